// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const redacted = "xxxxx"

// RedactDSN returns dsn in a form safe for logs: server passwords are
// masked. SQLite paths are returned unchanged. A DSN the driver cannot parse
// is reduced to the driver name.
func RedactDSN(driver, dsn string) string {
	switch driver {
	case DriverPostgres:
		cfg, err := pgconn.ParseConfig(dsn)
		if err != nil {
			return driver
		}
		u := url.URL{Scheme: "postgres", Host: cfg.Host, Path: "/" + cfg.Database}
		if cfg.Port != 0 {
			u.Host += ":" + strconv.Itoa(int(cfg.Port))
		}
		switch {
		case cfg.User != "" && cfg.Password != "":
			u.User = url.UserPassword(cfg.User, redacted)
		case cfg.User != "":
			u.User = url.User(cfg.User)
		}
		return u.String()
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return driver
		}
		if cfg.Passwd != "" {
			cfg.Passwd = redacted
		}
		return cfg.FormatDSN()
	default:
		return dsn
	}
}
