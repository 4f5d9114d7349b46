package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Admin  AdminConfig
	Redis  RedisConfig
	Cache  CacheConfig
	Quiz   QuizConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DBConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxRetries   int
	RetryDelay   time.Duration
	MaxOpenConns int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the single administrator credential. An empty Password
// means admin login is not configured and must be refused with a server error.
type AdminConfig struct {
	Username string
	Password string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL time.Duration
}

type QuizConfig struct {
	AnswerKeyFile string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 20)
	v.SetDefault("server.write_timeout", 20)
	v.SetDefault("server.body_limit", 1024*1024)

	v.SetDefault("db.host", "postgres")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.name", "biologia_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_retries", 5)
	v.SetDefault("db.retry_delay", 2)
	v.SetDefault("db.max_open_conns", 10)

	v.SetDefault("jwt.expiration", 1800)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml (optional) and the environment. A .env file in
// the working directory is loaded first when present. Environment variables
// use the upper-cased key with dots replaced by underscores, e.g. db.host is
// DB_HOST and jwt.secret is JWT_SECRET.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		DB: DBConfig{
			URL:          v.GetString("database_url"),
			Host:         v.GetString("db.host"),
			Port:         v.GetInt("db.port"),
			User:         v.GetString("db.user"),
			Password:     v.GetString("db.password"),
			Name:         v.GetString("db.name"),
			SSLMode:      v.GetString("db.sslmode"),
			MaxRetries:   v.GetInt("db.max_retries"),
			RetryDelay:   time.Duration(v.GetInt("db.retry_delay")) * time.Second,
			MaxOpenConns: v.GetInt("db.max_open_conns"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: time.Duration(v.GetInt("jwt.expiration")) * time.Second,
		},
		Admin: AdminConfig{
			Username: v.GetString("admin.username"),
			Password: v.GetString("admin.password"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TTL: v.GetDuration("cache.ttl"),
		},
		Quiz: QuizConfig{
			AnswerKeyFile: v.GetString("quiz.answer_key_file"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	if cfg.DB.MaxRetries < 1 {
		cfg.DB.MaxRetries = 1
	}
	if cfg.JWT.Expiration <= 0 {
		cfg.JWT.Expiration = 1800 * time.Second
	}

	return cfg, nil
}

// GetDSN returns DATABASE_URL when it is a postgres URL, otherwise a URL built
// from the discrete db.* settings.
func (c *Config) GetDSN() string {
	if strings.HasPrefix(c.DB.URL, "postgresql://") || strings.HasPrefix(c.DB.URL, "postgres://") {
		return c.DB.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DB.User, c.DB.Password),
		Host:   c.DB.Host + ":" + strconv.Itoa(c.DB.Port),
		Path:   "/" + c.DB.Name,
	}
	if c.DB.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.DB.SSLMode)
	}
	return u.String()
}
