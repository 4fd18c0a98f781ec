package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Minio     MinioConfig     `yaml:"minio"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Worker    WorkerConfig    `yaml:"worker"`
	Retry     RetryConfig     `yaml:"retry"`
	Generator GeneratorConfig `yaml:"generator"`
	Editor    EditorConfig    `yaml:"editor"`
	Export    ExportConfig    `yaml:"export"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DBConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"post_composer"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type MinioConfig struct {
	Endpoint       string        `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey      string        `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey      string        `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	UseSSL         bool          `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	Region         string        `yaml:"region" env:"MINIO_REGION" env-default:"us-east-1"`
	OriginalBucket string        `yaml:"original_bucket" env:"MINIO_ORIGINAL_BUCKET" env-default:"original"`
	ExportsBucket  string        `yaml:"exports_bucket" env:"MINIO_EXPORTS_BUCKET" env-default:"exports"`
	PresignExpiry  time.Duration `yaml:"presign_expiry" env:"MINIO_PRESIGN_EXPIRY" env-default:"1h"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	ExportTopic  string   `yaml:"export_topic" env:"KAFKA_EXPORT_TOPIC" env-default:"post-export"`
	ResultsTopic string   `yaml:"results_topic" env:"KAFKA_RESULTS_TOPIC" env-default:"post-exported"`
	GroupID      string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"post-composer-group"`
}

type WorkerConfig struct {
	Concurrency int           `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"2"`
	PacingDelay time.Duration `yaml:"pacing_delay" env:"WORKER_PACING_DELAY" env-default:"500ms"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"100ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

type GeneratorConfig struct {
	BaseURL     string        `yaml:"base_url" env:"GENERATOR_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model       string        `yaml:"model" env:"GENERATOR_MODEL" env-default:"gpt-3.5-turbo"`
	Temperature float64       `yaml:"temperature" env:"GENERATOR_TEMPERATURE" env-default:"0.8"`
	MaxTokens   int           `yaml:"max_tokens" env:"GENERATOR_MAX_TOKENS" env-default:"2000"`
	Timeout     time.Duration `yaml:"timeout" env:"GENERATOR_TIMEOUT" env-default:"30s"`
}

type EditorConfig struct {
	CanvasSize int    `yaml:"canvas_size" env:"EDITOR_CANVAS_SIZE" env-default:"600"`
	FontsDir   string `yaml:"fonts_dir" env:"EDITOR_FONTS_DIR"`
}

type ExportConfig struct {
	MaxPhotos      int   `yaml:"max_photos" env:"EXPORT_MAX_PHOTOS" env-default:"10"`
	MaxUploadSize  int64 `yaml:"max_upload_size" env:"EXPORT_MAX_UPLOAD_SIZE" env-default:"10485760"`
	DefaultQuality int   `yaml:"default_quality" env:"EXPORT_DEFAULT_QUALITY" env-default:"90"`
}

// MustLoad reads the YAML file named by CONFIG_PATH, then overlays the
// environment. A missing file falls back to environment and defaults only.
func MustLoad() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
