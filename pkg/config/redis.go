package config

// RedisConfig configures the optional redis connection used for the page
// revalidation signal. An empty address selects the in-process fallback.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func (c *RedisConfig) Validate() error {
	return nil
}
