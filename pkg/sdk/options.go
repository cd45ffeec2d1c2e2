package sdk

import "time"

type options struct {
	callTimeout time.Duration
	attempts    int
	backoff     time.Duration
	checkFormat bool
}

// Plan generation is a model call, so calls get a generous timeout.
func defaultOptions() options {
	return options{
		callTimeout: 2 * time.Minute,
		attempts:    3,
		backoff:     500 * time.Millisecond,
	}
}

// Option configures a Client.
type Option func(*options)

// WithTimeout bounds each tool call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// WithRetry sets how often a failed transport call is attempted and the
// delay before the first retry. Tool errors are never retried.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.backoff = backoff
	}
}

// WithFormatCheck makes Initialize fail with ErrIncompatibleFormat when the
// server parses a different plan format than this SDK understands.
func WithFormatCheck() Option {
	return func(o *options) { o.checkFormat = true }
}
