package kv

import "time"

// RedisOption configures the Redis store.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
	MaxRetries   int // optimistic transaction retries
}

// WithRedisAddr sets the host:port address.
func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) {
		c.Addr = addr
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPool sets connection pool settings.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisPrefix sets key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// WithRedisTxRetries bounds WATCH/MULTI retries for Update.
func WithRedisTxRetries(n int) RedisOption {
	return func(c *RedisConfig) {
		c.MaxRetries = n
	}
}

// SQLiteOption configures the SQLite store.
type SQLiteOption func(*SQLiteConfig)

// SQLiteConfig holds SQLite configuration.
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// WithSQLitePath sets the database file. ":memory:" is allowed.
func WithSQLitePath(path string) SQLiteOption {
	return func(c *SQLiteConfig) {
		c.Path = path
	}
}

// WithSQLiteBusyTimeout sets how long a writer waits on a locked database.
func WithSQLiteBusyTimeout(d time.Duration) SQLiteOption {
	return func(c *SQLiteConfig) {
		c.BusyTimeout = d
	}
}
