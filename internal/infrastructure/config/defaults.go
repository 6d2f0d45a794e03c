package config

import "time"

const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	DefaultFakePrice       = 100.0
	DefaultPairLockPoll    = 25 * time.Millisecond
)
