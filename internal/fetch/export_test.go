package fetch

// WithMaxBytes overrides the maximum accepted body size.
func WithMaxBytes(n int64) Options {
	return func(o *options) {
		o.maxBytes = n
	}
}
