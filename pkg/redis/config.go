package redis

import "time"

// Config holds the Redis connection settings. Redis is optional in this
// service (tenant cache backend); leave REDIS_URL empty to run without it.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL is e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of connection attempts at startup.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout caps the total connection time.
}
