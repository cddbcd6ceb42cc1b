package database

import "errors"

// ErrNotReady is returned by Ping before the startup connection check succeeds.
var ErrNotReady = errors.New("database not ready")
