package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		Sync            Sync
		Kafka           Kafka
		KafkaController KafkaController
		Reconcile       Reconcile
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax       int    `env:"PG_POOL_MAX,required"`
		URL           string `env:"PG_URL,required"`
		MigrationsDir string `env:"PG_MIGRATIONS_DIR" envDefault:"migrations"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		PublicBaseURL  string        `env:"S3_PUBLIC_BASE_URL,required"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Sync struct {
		ManagedHost    string        `env:"SYNC_MANAGED_HOST,required"`
		FetchTimeout   time.Duration `env:"SYNC_FETCH_TIMEOUT" envDefault:"30s"`
		ChunkSize      int           `env:"SYNC_CHUNK_SIZE" envDefault:"50"`
		ProductWorkers int           `env:"SYNC_PRODUCT_WORKERS" envDefault:"8"`
		ImageWorkers   int           `env:"SYNC_IMAGE_WORKERS" envDefault:"4"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS,required"`
		GroupID string   `env:"KAFKA_GROUP_ID,required"`
		Topic   string   `env:"KAFKA_TOPIC,required"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"60s"`
		BatchTimeout    time.Duration `env:"KAFKA_CONTROLLER_BATCH_TIMEOUT" envDefault:"30m"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"4"`
	}

	Reconcile struct {
		Interval        time.Duration `env:"RECONCILE_INTERVAL" envDefault:"24h"`
		StagingInterval time.Duration `env:"RECONCILE_STAGING_INTERVAL" envDefault:"1h"`
		RunTimeout      time.Duration `env:"RECONCILE_RUN_TIMEOUT" envDefault:"10m"`
		ShutdownTimeout time.Duration `env:"RECONCILE_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		StagingTTLDays  int           `env:"RECONCILE_STAGING_TTL_DAYS" envDefault:"2"`
		DryRun          bool          `env:"RECONCILE_DRY_RUN" envDefault:"true"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
