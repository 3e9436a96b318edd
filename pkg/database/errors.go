package database

import "errors"

var (
	// ErrNotReady indicates the database did not answer a ping within the connection timeout.
	ErrNotReady = errors.New("database not ready")
	// ErrUnknownDriver indicates an unsupported Config.Driver value.
	ErrUnknownDriver = errors.New("unknown database driver")
)
