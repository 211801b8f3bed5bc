package interfaces

// MessageFormatter renders a single message out of a resolved bundle.
type MessageFormatter interface {
	Format(content ContentMapping, locale, key string, data map[string]any) (string, error)
}

// MessageFormatterWithMetadata also reports where a message came from so
// hosts can annotate rendered output for in-context editing.
type MessageFormatterWithMetadata interface {
	FormatWithMetadata(content ContentMapping, locale, bundle, key string, data map[string]any) (string, map[string]any, error)
}
