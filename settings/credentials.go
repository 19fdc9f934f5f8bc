package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/t3chat/t3chat-tui/protocol"
)

// ErrInvalidInput wraps every form validation failure.
var ErrInvalidInput = errors.New("invalid settings")

// Credentials are the values the client needs to talk to the server.
type Credentials struct {
	OpenRouterKey string
	TavilyKey     string
	CustomModel   string
}

// Complete reports whether chatting is possible. Only the OpenRouter key
// is required.
func (c Credentials) Complete() bool { return c.OpenRouterKey != "" }

// APIKeys converts to the wire form; empty keys become null.
func (c Credentials) APIKeys() protocol.APIKeys {
	return protocol.NewAPIKeys(c.OpenRouterKey, c.TavilyKey)
}

// Load reads all persisted values. Missing keys load as empty strings.
func Load(ctx context.Context, s Store) (Credentials, error) {
	var c Credentials
	for _, kv := range []struct {
		key string
		dst *string
	}{
		{KeyOpenRouter, &c.OpenRouterKey},
		{KeyTavily, &c.TavilyKey},
		{KeyCustomModel, &c.CustomModel},
	} {
		v, err := s.Get(ctx, kv.key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Credentials{}, err
		}
		*kv.dst = v
	}
	return c, nil
}

// Form is the raw input of the settings dialog.
type Form struct {
	OpenRouterKey string `validate:"omitempty,max=512,printascii,nospace" label:"OpenRouter API key"`
	TavilyKey     string `validate:"omitempty,max=512,printascii,nospace" label:"Tavily API key"`
	CustomModel   string `validate:"omitempty,max=512,printascii,nospace" label:"Custom model"`
}

func (f Form) trimmed() Form {
	return Form{
		OpenRouterKey: strings.TrimSpace(f.OpenRouterKey),
		TavilyKey:     strings.TrimSpace(f.TavilyKey),
		CustomModel:   strings.TrimSpace(f.CustomModel),
	}
}

// Save validates f, persists every non-empty field and returns current with
// those fields replaced. Empty fields leave stored values alone.
func Save(ctx context.Context, s Store, current Credentials, f Form) (Credentials, error) {
	f = f.trimmed()
	if err := Validate(f); err != nil {
		return current, err
	}
	next := current
	for _, kv := range []struct {
		key string
		val string
		dst *string
	}{
		{KeyOpenRouter, f.OpenRouterKey, &next.OpenRouterKey},
		{KeyTavily, f.TavilyKey, &next.TavilyKey},
		{KeyCustomModel, f.CustomModel, &next.CustomModel},
	} {
		if kv.val == "" {
			continue
		}
		if err := s.Set(ctx, kv.key, kv.val); err != nil {
			return current, fmt.Errorf("save settings: %w", err)
		}
		*kv.dst = kv.val
	}
	return next, nil
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return fld.Tag.Get("label")
		})
		_ = validate.RegisterValidation("nospace", func(fl validator.FieldLevel) bool {
			return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
		})
	})
	return validate
}

// Validate checks a (trimmed) form. The error reads as a sentence suitable
// for a notice and wraps ErrInvalidInput.
func Validate(f Form) error {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s is too long (max %s characters)", fe.Field(), fe.Param()))
		case "nospace":
			msgs = append(msgs, fmt.Sprintf("%s must not contain spaces", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s contains invalid characters", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
