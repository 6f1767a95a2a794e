package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the HTTP API listens on
		Port int `env:"SERVER_PORT" envDefault:"5280"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	}

	// Database configuration
	Database struct {
		// Path to the SQLite database file
		Path string `env:"DATABASE_PATH" envDefault:"database/compsage.db"`
	}

	// Engine configuration
	Engine struct {
		// Maximum candidate rows loaded from the store per comp search
		PoolLimit int `env:"ENGINE_POOL_LIMIT" envDefault:"500"`

		// Optional JSON file overriding the default adjustment rates
		RatesPath string `env:"ADJUSTMENT_RATES_PATH"`
	}

	// Ingest configuration
	Ingest struct {
		// Maximum number of queued listing batches
		QueueSize int `env:"INGEST_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"INGEST_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"INGEST_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"INGEST_RETRY_DELAY" envDefault:"5"`
	}

	// Retention configuration
	Retention struct {
		// Days a saved adjustment session is kept before the sweep removes it
		SessionTTLDays int `env:"SESSION_TTL_DAYS" envDefault:"90"`

		// Cron schedule for the retention sweep
		SweepSchedule string `env:"RETENTION_SWEEP_SCHEDULE" envDefault:"0 3 * * *"`
	}

	// Geocoding configuration
	Geocoding struct {
		// Enables coordinate backfill for records missing lat/lng
		Enabled bool `env:"GEOCODING_ENABLED" envDefault:"true"`

		// Cron schedule for the backfill job
		Schedule string `env:"GEOCODING_SCHEDULE" envDefault:"30 2 * * *"`

		// Directory for the geocode response cache (defaults next to the binary)
		CacheDir string `env:"GEOCODING_CACHE_DIR"`
	}

	// Telegram notification configuration
	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`

		// Optional filters limiting which subjects trigger a notification
		MinPrice       *int64   `env:"TELEGRAM_MIN_PRICE"`
		MaxPrice       *int64   `env:"TELEGRAM_MAX_PRICE"`
		MinSquareFeet  *int     `env:"TELEGRAM_MIN_SQUARE_FEET"`
		MaxSquareFeet  *int     `env:"TELEGRAM_MAX_SQUARE_FEET"`
		PostalPrefixes []string `env:"TELEGRAM_POSTAL_PREFIXES" envSeparator:","`
		PropertyTypes  []string `env:"TELEGRAM_PROPERTY_TYPES" envSeparator:","`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
