// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
//
// Конфиг читается из YAML-файла по пути CONFIG_PATH, если он задан,
// иначе только из переменных окружения. Переменные окружения имеют приоритет над файлом.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые драйверы хранилища пользователей.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env            string          `yaml:"env" env:"ENV" env-default:"local"`
	ProjectName    string          `yaml:"project_name" env:"PROJECT_NAME" env-default:"user-service"`
	GRPCAddress    string          `yaml:"grpc_address" env:"GRPC_ADDRESS" env-default:":50051"`
	HTTPServer     HTTPServer      `yaml:"http_server"`
	Storage        Storage         `yaml:"storage"`
	Redis          RedisConnection `yaml:"redis_connection"`
	RabbitMQ       RabbitMQ        `yaml:"rabbitmq"`
	JWTToken       JWTToken        `yaml:"jwttoken"`
	Security       Security        `yaml:"security"`
	FirstSuperuser FirstSuperuser  `yaml:"first_superuser"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Storage выбирает хранилище пользователей и параметры подключения к нему.
type Storage struct {
	Driver           string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	ConnectionString string `yaml:"connection_string" env:"STORAGE_CONNECTION_STRING"`
	Database         string `yaml:"database" env:"STORAGE_DATABASE" env-default:"users"`
	MigrationsPath   string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой Address отключает кэш.
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"REDIS_USER"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
	UserTTL     time.Duration `yaml:"user_ttl" env:"REDIS_USER_TTL" env-default:"5m"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает события.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"users"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	SecretKey                string `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`
	Algorithm                string `yaml:"algorithm" env:"ALGORITHM" env-default:"HS256"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes" env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
}

// Security параметры хеширования паролей и ограничения попыток входа.
type Security struct {
	BcryptCost int     `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	LoginRPS   float64 `yaml:"login_rps" env:"LOGIN_RPS" env-default:"1"`
	LoginBurst int     `yaml:"login_burst" env:"LOGIN_BURST" env-default:"5"`
	// TrustProxyHeaders берёт адрес клиента из X-Forwarded-For/X-Real-IP.
	// Включать только за доверенным прокси, который перезаписывает эти заголовки.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"TRUST_PROXY_HEADERS" env-default:"false"`
	LoginMaxClients   int  `yaml:"login_max_clients" env:"LOGIN_MAX_CLIENTS" env-default:"10000"`
}

// FirstSuperuser учётная запись суперпользователя, создаваемая при старте.
// Пустой Email отключает создание.
type FirstSuperuser struct {
	Email    string `yaml:"email" env:"FIRST_SUPERUSER"`
	Password string `yaml:"password" env:"FIRST_SUPERUSER_PASSWORD"`
}

// TokenTTL возвращает срок жизни токена доступа.
func (j JWTToken) TokenTTL() time.Duration {
	return time.Duration(j.AccessTokenExpireMinutes) * time.Minute
}

// Load загружает конфиг и проверяет его.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file: %s - does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read env: %w", op, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverMongo:
		if c.Storage.ConnectionString == "" {
			return fmt.Errorf("storage driver %q requires connection_string", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.JWTToken.AccessTokenExpireMinutes <= 0 {
		return errors.New("access_token_expire_minutes must be positive")
	}
	if c.FirstSuperuser.Email != "" && c.FirstSuperuser.Password == "" {
		return errors.New("first_superuser.password is required when email is set")
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"ProjectName: %s\n"+
			"GRPCAddress: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  ConnectionString: %s\n"+
			"  Database: %s\n"+
			"  MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"  UserTTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"JWTToken:\n"+
			"  SecretKey: %s\n"+
			"  Algorithm: %s\n"+
			"  TokenTTL: %s\n"+
			"Security:\n"+
			"  BcryptCost: %d\n"+
			"  LoginRPS: %g\n"+
			"  LoginBurst: %d\n"+
			"  TrustProxyHeaders: %t\n"+
			"  LoginMaxClients: %d\n"+
			"FirstSuperuser:\n"+
			"  Email: %s\n"+
			"  Password: %s\n",
		c.Env,
		c.ProjectName,
		c.GRPCAddress,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.Storage.Driver,
		mask(c.Storage.ConnectionString),
		c.Storage.Database,
		c.Storage.MigrationsPath,
		c.Redis.Address,
		mask(c.Redis.Password),
		c.Redis.User,
		c.Redis.DB,
		c.Redis.MaxRetries,
		c.Redis.DialTimeout,
		c.Redis.Timeout,
		c.Redis.UserTTL,
		mask(c.RabbitMQ.URL),
		c.RabbitMQ.Exchange,
		mask(c.JWTToken.SecretKey),
		c.JWTToken.Algorithm,
		c.JWTToken.TokenTTL(),
		c.Security.BcryptCost,
		c.Security.LoginRPS,
		c.Security.LoginBurst,
		c.Security.TrustProxyHeaders,
		c.Security.LoginMaxClients,
		c.FirstSuperuser.Email,
		mask(c.FirstSuperuser.Password),
	)
}
