package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrBundleSuffixInvalid = errors.New("usecontent config: bundle suffix must be a file extension such as .properties")
var ErrLocaleSignalEmpty = errors.New("usecontent config: locale signals must not contain blank keys")
var ErrLoggingProviderUnknown = errors.New("usecontent config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("usecontent config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("usecontent config: logging format is invalid")

var suffixPattern = regexp.MustCompile(`^\.[A-Za-z0-9_-]+$`)

// Config captures the options recognised at engine registration.
type Config struct {
	// AutoloadTemplateContent installs the load interceptor.
	AutoloadTemplateContent bool
	// EnableMetadata is forwarded to the message formatter.
	EnableMetadata bool
	// BundleSuffix is appended to template names to form bundle keys.
	BundleSuffix string
	Locale       LocaleConfig
	Content      ContentConfig
	Logging      LoggingConfig
}

// LocaleConfig controls which render context keys carry the locale.
type LocaleConfig struct {
	Signals []string
}

// ContentConfig captures content resolution behaviour.
type ContentConfig struct {
	// DedupeInflight shares one load between concurrent misses on a key.
	DedupeInflight bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the registration defaults.
func DefaultConfig() Config {
	return Config{
		AutoloadTemplateContent: true,
		EnableMetadata:          false,
		BundleSuffix:            ".properties",
		Locale: LocaleConfig{
			Signals: []string{"contextLocale", "contentLocality", "locale", "locality"},
		},
		Content: ContentConfig{},
		Logging: LoggingConfig{
			Provider: "noop",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if err := validation.Validate(cfg.BundleSuffix, validation.Required, validation.Match(suffixPattern)); err != nil {
		return fmt.Errorf("%w: %q", ErrBundleSuffixInvalid, cfg.BundleSuffix)
	}
	for _, signal := range cfg.Locale.Signals {
		if strings.TrimSpace(signal) == "" {
			return ErrLocaleSignalEmpty
		}
	}

	provider := NormalizeProvider(cfg.Logging.Provider)
	if err := validation.Validate(provider, validation.In("", "noop", "console", "gologger")); err != nil {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); level != "" {
		if err := validation.Validate(level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")); err != nil {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
	}
	if provider == "gologger" {
		if format := strings.ToLower(strings.TrimSpace(cfg.Logging.Format)); format != "" {
			if err := validation.Validate(format, validation.In("json", "console", "pretty")); err != nil {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// NormalizeProvider lowercases and trims a logging provider name.
func NormalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
