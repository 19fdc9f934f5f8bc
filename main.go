package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/t3chat/t3chat-tui/app"
	"github.com/t3chat/t3chat-tui/client"
	"github.com/t3chat/t3chat-tui/config"
	"github.com/t3chat/t3chat-tui/logging"
	"github.com/t3chat/t3chat-tui/msg"
	"github.com/t3chat/t3chat-tui/settings"
)

var version = "dev"

type flags struct {
	profile   string
	config    string
	noColor   bool
	ephemeral bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "t3chat: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "t3chat",
		Short:         "Terminal client for the t3chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}
	cmd.Flags().String("server", "", "chat server origin, e.g. https://chat.example.com")
	cmd.Flags().String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "named profile for state isolation (~/.t3chat/profiles/<name>)")
	cmd.Flags().StringVar(&f.config, "config", "", "config file (default <profile dir>/config.toml)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable ANSI colors")
	cmd.Flags().BoolVar(&f.ephemeral, "ephemeral", false, "keep API keys in memory only")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "t3chat %s\n", version)
		},
	})
	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	if f.noColor {
		os.Setenv("NO_COLOR", "1")
	}

	dir, err := config.ProfileDir(f.profile)
	if err != nil {
		return err
	}
	v := config.New(dir, f.config)
	for key, flag := range map[string]string{"server_url": "server", "log_level": "log-level"} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, logFile, err := logging.Setup(dir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	url, err := client.EndpointURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), dir, f.ephemeral)
	if err != nil {
		log.Error().Err(err).Msg("open settings store")
		return err
	}
	defer store.Close()

	log.Info().Str("version", version).Str("url", url).Str("profile", dir).Msg("starting")

	conn := client.New(url, log)
	m := app.New(app.Options{
		Transport: conn,
		Store:     store,
		Config:    cfg,
		Version:   version,
		Log:       log,
		SaveTheme: func(theme string) error { return config.SaveTheme(v, dir, theme) },
		ExportDir: ".",
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	go p.Send(app.ProgramReady{Sender: p})
	watchConfig(v, p, log)

	_, err = p.Run()
	conn.Close()
	if err != nil {
		log.Error().Err(err).Msg("program exited")
		return err
	}
	log.Info().Msg("bye")
	return nil
}

func openStore(ctx context.Context, dir string, ephemeral bool) (settings.Store, error) {
	if ephemeral {
		return settings.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	s, err := settings.OpenSQLite(ctx, filepath.Join(dir, "settings.db"))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func watchConfig(v *viper.Viper, p *tea.Program, log zerolog.Logger) {
	ok := config.Watch(v, func(cfg config.Config, err error) {
		p.Send(msg.ConfigReloaded{Config: cfg, Err: err})
	})
	if ok {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("watching config")
	}
}
