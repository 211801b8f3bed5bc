package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-usecontent/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if !cfg.AutoloadTemplateContent {
		t.Fatalf("expected autoload to default to true")
	}
	if cfg.EnableMetadata || cfg.Content.DedupeInflight {
		t.Fatalf("expected metadata and dedupe to default to false")
	}
}

func TestConfigValidate_BundleSuffix(t *testing.T) {
	cases := map[string]bool{
		".properties": true,
		".toml":       true,
		"":            false,
		"properties":  false,
		"./x":         false,
	}
	for suffix, ok := range cases {
		cfg := runtimeconfig.DefaultConfig()
		cfg.BundleSuffix = suffix

		err := cfg.Validate()
		if ok && err != nil {
			t.Fatalf("suffix %q: unexpected error %v", suffix, err)
		}
		if !ok && !errors.Is(err, runtimeconfig.ErrBundleSuffixInvalid) {
			t.Fatalf("suffix %q: expected ErrBundleSuffixInvalid, got %v", suffix, err)
		}
	}
}

func TestConfigValidate_RejectsBlankLocaleSignal(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Locale.Signals = []string{"locale", " "}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLocaleSignalEmpty) {
		t.Fatalf("expected ErrLocaleSignalEmpty, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "console"
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "GoLogger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
