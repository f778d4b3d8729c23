package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// ExposeErrors добавляет сырой текст 5xx ошибок в ответ
		ExposeErrors bool `yaml:"expose_errors"`
		// ShutdownTimeout в секундах
		ShutdownTimeout int `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		DSN             string `yaml:"url"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // минуты
		RunMigrations   bool   `yaml:"run_migrations"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		// TTL в часах; по умолчанию 7 дней
		TTL int `yaml:"ttl"`
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		// CacheTTL в секундах для справочника тьюторов
		CacheTTL int `yaml:"cache_ttl"`
	} `yaml:"redis"`

	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Workers struct {
		// SlotExpiryInterval в минутах; 0 (по умолчанию) - воркер не запускается
		SlotExpiryInterval int `yaml:"slot_expiry_interval"`
	} `yaml:"workers"`

	// Lifecycle держит спорные правила жизненного цикла тьюторий.
	// По умолчанию все выключены: finalizar из любого состояния, слот остается ocupado.
	Lifecycle struct {
		StrictFinalize               bool `yaml:"strict_finalize"`
		TutorCancelRequiresOwnership bool `yaml:"tutor_cancel_requires_ownership"`
		ReleaseSlotOnFinalize        bool `yaml:"release_slot_on_finalize"`
	} `yaml:"lifecycle"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 4000
	cfg.Server.Env = "development"
	cfg.Server.ExposeErrors = true
	cfg.Server.ShutdownTimeout = 10
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 30
	cfg.Database.RunMigrations = true
	cfg.JWT.TTL = 7 * 24
	cfg.Redis.CacheTTL = 60
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RPS = 5
	cfg.RateLimit.Burst = 10
	return &cfg
}

// Load читает .env, затем YAML (если есть), затем переменные окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	ints := []struct {
		name  string
		value string
		dst   *int
	}{
		{"SERVER_PORT", port, &c.Server.Port},
		{"JWT_TTL_HOURS", os.Getenv("JWT_TTL_HOURS"), &c.JWT.TTL},
		{"REDIS_DB", os.Getenv("REDIS_DB"), &c.Redis.DB},
	}
	for _, it := range ints {
		if it.value == "" {
			continue
		}
		n, err := strconv.Atoi(it.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", it.name, it.value, err)
		}
		*it.dst = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required (DATABASE_URL)")
	}
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("jwt secret is required outside development (JWT_SECRET)")
		}
		c.JWT.Secret = "dev-secret"
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %d", c.JWT.TTL)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "test"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Hour
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTL) * time.Second
}

func (c *Config) SlotExpiryEvery() time.Duration {
	return time.Duration(c.Workers.SlotExpiryInterval) * time.Minute
}
