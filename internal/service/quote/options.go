package quote

import (
	"RsiWatch/internal/domain/service"
	applogger "RsiWatch/pkg/logger"
)

// Option configures a quote source.
type Option func(*options)

type options struct {
	baseURL    string
	apiKey     string
	outputSize int
	resolver   service.SymbolResolver
	log        *applogger.Logger
}

func defaultOptions() *options {
	return &options{
		outputSize: 120,
		log:        applogger.Nop(),
	}
}

// WithBaseURL sets the service root, without a trailing slash.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithAPIKey sets the provider API key.
func WithAPIKey(k string) Option {
	return func(o *options) { o.apiKey = k }
}

// WithOutputSize sets how many daily bars are requested from a closes provider.
func WithOutputSize(n int) Option {
	return func(o *options) { o.outputSize = n }
}

// WithResolver sets the directory used to normalize symbols.
func WithResolver(r service.SymbolResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(o *options) { o.log = l }
}
