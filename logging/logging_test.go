package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Str("conn_id", "abc").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "shown", gjson.Get(out, "message").String())
	assert.Equal(t, "abc", gjson.Get(out, "conn_id").String())
	assert.Equal(t, "t3chat", gjson.Get(out, "app").String())
}

func TestNew_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "loud")
	l.Debug().Msg("debug")
	l.Info().Msg("info")
	assert.NotContains(t, buf.String(), `"debug"`)
	assert.Contains(t, buf.String(), `"info"`)
}

func TestSetup_WritesToProfileFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	l, closer, err := Setup(dir, "debug")
	require.NoError(t, err)
	l.Debug().Msg("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, Filename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
