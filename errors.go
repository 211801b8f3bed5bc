package usecontent

import (
	"github.com/goliatone/go-usecontent/internal/content"
	"github.com/goliatone/go-usecontent/internal/di"
	"github.com/goliatone/go-usecontent/internal/interceptor"
	"github.com/goliatone/go-usecontent/internal/message"
	"github.com/goliatone/go-usecontent/internal/parser"
	"github.com/goliatone/go-usecontent/internal/views"
)

var (
	ErrEngineRequired          = di.ErrEngineRequired
	ErrLoadHookRequired        = interceptor.ErrLoadHookRequired
	ErrUnsupportedTemplate     = interceptor.ErrUnsupportedTemplate
	ErrNoView                  = content.ErrNoView
	ErrBundleNotFound          = views.ErrBundleNotFound
	ErrUnsupportedBundleFormat = parser.ErrUnsupportedBundleFormat
	ErrMessageNotFound         = message.ErrMessageNotFound
)

type (
	MissingViewError    = content.MissingViewError
	ParseError          = content.ParseError
	BundleNotFoundError = views.NotFoundError
)
