// Package config описывает настройки сервиса и загружает их из YAML-файла
// с возможностью переопределения через переменные окружения.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	TimeZone                string `yaml:"time_zone" env:"TIME_ZONE" env-default:"UTC"`
	SeedOnStart             bool   `yaml:"seed_on_start" env:"SEED_ON_START" env-default:"false"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	JWTToken                `yaml:"jwttoken"`
	BlobStorage             `yaml:"blob_storage"`
	RabbitMQ                `yaml:"rabbitmq"`
	Quota                   `yaml:"quota"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer настройки HTTP-сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection настройки подключения к Redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeout" env-default:"3s"`
}

// JWTToken настройки токенов доступа.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// BlobStorage настройки S3-совместимого хранилища для файлов товаров.
type BlobStorage struct {
	Endpoint  string        `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string        `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string        `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool          `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Bucket    string        `yaml:"bucket" env-default:"media"`
	URLTTL    time.Duration `yaml:"url_ttl" env-default:"15m"`
}

// RabbitMQ настройки публикации событий скачивания.
type RabbitMQ struct {
	URL      string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string        `yaml:"exchange" env-default:"downloads"`
	Retries  int           `yaml:"retries" env-default:"5"`
	Delay    time.Duration `yaml:"delay" env-default:"2s"`
}

// Quota настройки учёта скачиваний.
type Quota struct {
	// LockTTL ограничивает время удержания блокировки пользователя в Redis.
	LockTTL time.Duration `yaml:"lock_ttl" env-default:"5s"`
	// LockWait задаёт, сколько ждать освобождения блокировки.
	LockWait time.Duration `yaml:"lock_wait" env-default:"3s"`
}

// RateLimit ограничение частоты запросов одного пользователя.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// Load читает конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг из файла, указанного в CONFIG_PATH, и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Location возвращает часовой пояс, в котором считается "сегодня".
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"TimeZone: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"BlobStorage:\n"+
			"  Endpoint: %s\n"+
			"  Bucket: %s\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.TimeZone,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.DB,
		c.Endpoint,
		c.Bucket,
		c.Exchange,
		c.TokenTTL,
	)
}
