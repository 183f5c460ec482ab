package params

import "text/template"

type Options struct {
	// Strict makes references that do not resolve an error. By default they resolve to nil.
	Strict bool

	// Funcs are made available to {{ }} templates in addition to the sprig functions.
	Funcs template.FuncMap
}

var DefaultOptions = Options{}

type Option func(*Options)

func WithStrict() Option {
	return func(o *Options) {
		o.Strict = true
	}
}

func WithFuncs(funcs template.FuncMap) Option {
	return func(o *Options) {
		o.Funcs = funcs
	}
}

func ApplyOptions(opts ...Option) Options {
	options := DefaultOptions

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
