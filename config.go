package usecontent

import "github.com/goliatone/go-usecontent/internal/runtimeconfig"

var (
	ErrBundleSuffixInvalid    = runtimeconfig.ErrBundleSuffixInvalid
	ErrLocaleSignalEmpty      = runtimeconfig.ErrLocaleSignalEmpty
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config        = runtimeconfig.Config
	LocaleConfig  = runtimeconfig.LocaleConfig
	ContentConfig = runtimeconfig.ContentConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the registration defaults: autoload on, metadata off.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
