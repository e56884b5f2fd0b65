package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Detector classes as named by the COCO-trained model server.
var (
	defaultCalibrationClasses    = []string{"car", "motorcycle", "cell_phone", "truck", "parking_meter", "mouse", "bowl", "suitcase"}
	defaultReconciliationClasses = []string{"car", "motorcycle"}
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Cache          CacheConfig
	Log            LogConfig
	Worker         WorkerConfig
	Detector       DetectorConfig
	Calibration    PassConfig
	Reconciliation PassConfig
	Images         ImagesConfig
	Kafka          KafkaConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	SpotsCacheTTL time.Duration
	StatsCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
	RetryBackoff  time.Duration
	Concurrency   int
	LockMode      string // LockModeRedis or LockModeLocal
	LockTTL       time.Duration
	ClaimMinIdle  time.Duration
}

// Sector lock backends. LockModeLocal only serializes passes inside one
// process and suits a single-process deployment.
const (
	LockModeRedis = "redis"
	LockModeLocal = "local"
)

type DetectorConfig struct {
	Provider       string // "http" or "rekognition"
	BaseURL        string
	RequestTimeout time.Duration
	PassTimeout    time.Duration
	MinConfidence  float64
	AWSRegion      string
	MaxLabels      int32
}

// PassConfig holds the detector class allowlist of a calibration or
// reconciliation pass.
type PassConfig struct {
	Classes []string
}

type ImagesConfig struct {
	BasePath string
	Annotate bool
}

type KafkaConfig struct {
	Enabled          bool
	BootstrapServers string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	Topic            string
	Acks             string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine in containers, the environment is enough.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := fromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers fallbacks for unset keys. An explicit value, zero
// included, always wins.
func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("SPOTS_CACHE_TTL", 30)
	v.SetDefault("STATS_CACHE_TTL", 300)

	v.SetDefault("WORKER_CONSUMER_GROUP", "sector-image-workers")
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_RETRY_BACKOFF", 500)
	v.SetDefault("WORKER_CONCURRENCY", 4)
	// The API and every worker process must share one lock per sector.
	v.SetDefault("WORKER_LOCK_MODE", LockModeRedis)
	v.SetDefault("WORKER_LOCK_TTL", 120)
	v.SetDefault("WORKER_CLAIM_MIN_IDLE", 300)

	v.SetDefault("DETECTOR_PROVIDER", "http")
	v.SetDefault("DETECTOR_BASE_URL", "http://localhost:5000")
	v.SetDefault("DETECTOR_REQUEST_TIMEOUT", 60)
	v.SetDefault("DETECTOR_PASS_TIMEOUT", 90)
	v.SetDefault("DETECTOR_MIN_CONFIDENCE", 15)
	v.SetDefault("DETECTOR_MAX_LABELS", 50)

	v.SetDefault("IMAGES_BASE_PATH", "./media")

	v.SetDefault("KAFKA_TOPIC", "parking-occupancy-events")
	v.SetDefault("KAFKA_SECURITY_PROTOCOL", "PLAINTEXT")
	v.SetDefault("KAFKA_ACKS", "all")
}

func fromViper(v *viper.Viper) *Config {
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SpotsCacheTTL: time.Duration(v.GetInt("SPOTS_CACHE_TTL")) * time.Second,
			StatsCacheTTL: time.Duration(v.GetInt("STATS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    v.GetInt("WORKER_MAX_RETRIES"),
			RetryBackoff:  time.Duration(v.GetInt("WORKER_RETRY_BACKOFF")) * time.Millisecond,
			Concurrency:   v.GetInt("WORKER_CONCURRENCY"),
			LockMode:      strings.ToLower(v.GetString("WORKER_LOCK_MODE")),
			LockTTL:       time.Duration(v.GetInt("WORKER_LOCK_TTL")) * time.Second,
			ClaimMinIdle:  time.Duration(v.GetInt("WORKER_CLAIM_MIN_IDLE")) * time.Second,
		},
		Detector: DetectorConfig{
			Provider:       strings.ToLower(v.GetString("DETECTOR_PROVIDER")),
			BaseURL:        v.GetString("DETECTOR_BASE_URL"),
			RequestTimeout: time.Duration(v.GetInt("DETECTOR_REQUEST_TIMEOUT")) * time.Second,
			PassTimeout:    time.Duration(v.GetInt("DETECTOR_PASS_TIMEOUT")) * time.Second,
			MinConfidence:  v.GetFloat64("DETECTOR_MIN_CONFIDENCE"),
			AWSRegion:      v.GetString("AWS_REGION"),
			MaxLabels:      v.GetInt32("DETECTOR_MAX_LABELS"),
		},
		Calibration: PassConfig{
			Classes: listOrDefault(v.GetString("CALIBRATION_CLASSES"), defaultCalibrationClasses),
		},
		Reconciliation: PassConfig{
			Classes: listOrDefault(v.GetString("RECONCILIATION_CLASSES"), defaultReconciliationClasses),
		},
		Images: ImagesConfig{
			BasePath: v.GetString("IMAGES_BASE_PATH"),
			Annotate: v.GetBool("IMAGES_ANNOTATE"),
		},
		Kafka: KafkaConfig{
			Enabled:          v.GetBool("KAFKA_ENABLED"),
			BootstrapServers: v.GetString("KAFKA_BOOTSTRAP_SERVERS"),
			SecurityProtocol: v.GetString("KAFKA_SECURITY_PROTOCOL"),
			SASLMechanism:    v.GetString("KAFKA_SASL_MECHANISM"),
			SASLUsername:     v.GetString("KAFKA_SASL_USERNAME"),
			SASLPassword:     v.GetString("KAFKA_SASL_PASSWORD"),
			Topic:            v.GetString("KAFKA_TOPIC"),
			Acks:             v.GetString("KAFKA_ACKS"),
		},
	}

	return cfg
}

// Validate rejects combinations that break pass serialization or
// redelivery.
func (c *Config) Validate() error {
	switch c.Worker.LockMode {
	case LockModeLocal:
	case LockModeRedis:
		// A lock that expires mid-pass lets a second pass into the sector.
		if c.Worker.LockTTL <= c.Detector.PassTimeout {
			return fmt.Errorf("WORKER_LOCK_TTL (%s) must exceed DETECTOR_PASS_TIMEOUT (%s)",
				c.Worker.LockTTL, c.Detector.PassTimeout)
		}
	default:
		return fmt.Errorf("unknown WORKER_LOCK_MODE %q", c.Worker.LockMode)
	}

	// An entry claimed while its pass is still running would run twice.
	if c.Worker.ClaimMinIdle <= c.Detector.PassTimeout {
		return fmt.Errorf("WORKER_CLAIM_MIN_IDLE (%s) must exceed DETECTOR_PASS_TIMEOUT (%s)",
			c.Worker.ClaimMinIdle, c.Detector.PassTimeout)
	}
	// A zero TTL would make Redis keep cached snapshots forever.
	if c.Cache.SpotsCacheTTL <= 0 || c.Cache.StatsCacheTTL <= 0 {
		return fmt.Errorf("SPOTS_CACHE_TTL and STATS_CACHE_TTL must be positive")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 100 {
		return fmt.Errorf("DETECTOR_MIN_CONFIDENCE must be within [0, 100], got %v", c.Detector.MinConfidence)
	}
	return nil
}

// listOrDefault parses a comma separated list, falling back to a copy of def
// so callers may modify the result.
func listOrDefault(s string, def []string) []string {
	if list := parseList(s); len(list) > 0 {
		return list
	}
	return append([]string(nil), def...)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
