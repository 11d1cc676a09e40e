// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

// Option configures New.
type Option func(*options)

type options struct {
	dir     string
	codec   string
	driver  string
	dsn     string
	onError func(error)
}

// WithDir stores the database file in dir instead of the data directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithCodec selects the structured codec by name: "json" (default), "yaml"
// or "cbor". Values must be read with the codec they were written with.
func WithCodec(name string) Option {
	return func(o *options) { o.codec = name }
}

// WithBackend keeps the store in a database server instead of a local file.
// driver is "postgres" or "mysql"; dsn is passed to the driver.
func WithBackend(driver, dsn string) Option {
	return func(o *options) {
		o.driver = driver
		o.dsn = dsn
	}
}

// WithErrorHandler receives every error the store swallows.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}
