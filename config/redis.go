package config

// RedisConfig contains Redis connection configuration for the credential store.
type RedisConfig struct {
	// Addr is the Redis server address.
	Addr string `env:"ADDR" envDefault:"localhost:6379"`

	// Password authenticates against the Redis server (empty for none).
	Password string `env:"PASSWORD" envDefault:""`

	// DB is the Redis logical database number.
	DB int `env:"DB" envDefault:"0"`

	// UseSentinel enables sentinel-backed failover connections.
	UseSentinel bool `env:"USE_SENTINEL" envDefault:"false"`

	// SentinelAddrs lists sentinel endpoints (required when UseSentinel).
	SentinelAddrs []string `env:"SENTINEL_ADDRS" envSeparator:","`

	// SentinelMaster is the sentinel master set name.
	SentinelMaster string `env:"SENTINEL_MASTER" envDefault:"mymaster"`
}
