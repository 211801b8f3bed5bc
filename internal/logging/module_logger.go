package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

const (
	rootModule        = "usecontent"
	contentModule     = "usecontent.content"
	interceptorModule = "usecontent.interceptor"
	localeModule      = "usecontent.locale"
	messageModule     = "usecontent.message"
)

const (
	fieldBundle   = "bundle"
	fieldLocale   = "locale"
	fieldTemplate = "template"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RootLogger returns the top level module logger.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// ContentLogger returns the logger namespace reserved for content resolution.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// InterceptorLogger returns the logger namespace reserved for the load hook wrapper.
func InterceptorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, interceptorModule)
}

// LocaleLogger returns the logger namespace reserved for locale normalisation.
func LocaleLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localeModule)
}

// MessageLogger returns the logger namespace reserved for message formatting.
func MessageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, messageModule)
}

// WithBundleContext enriches the provided logger with the template name,
// bundle and locale involved in a resolution. Empty values are ignored.
func WithBundleContext(logger interfaces.Logger, template, bundle, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(template); trimmed != "" {
		fields[fieldTemplate] = trimmed
	}
	if trimmed := strings.TrimSpace(bundle); trimmed != "" {
		fields[fieldBundle] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
