package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	// Tokens controla dónde viven los refresh tokens. Con kind "redis" se
	// usan con TTL nativo; con "storage" van al driver principal.
	Tokens struct {
		Kind  string `yaml:"kind"` // storage | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"tokens"`

	JWT struct {
		AccessSecret  string `yaml:"access_secret"`
		RefreshSecret string `yaml:"refresh_secret"`
		AccessTTL     string `yaml:"access_ttl"`
		RefreshTTL    string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Verification struct {
		TTL string `yaml:"ttl"`
		// GCInterval controla cada cuánto se borran códigos expirados.
		GCInterval string `yaml:"gc_interval"`
	} `yaml:"verification"`

	Delivery struct {
		// real | log (log imprime el código en vez de entregarlo; solo dev)
		Mode      string `yaml:"mode"`
		Workers   int    `yaml:"workers"`
		QueueSize int    `yaml:"queue_size"`
	} `yaml:"delivery"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	SNS struct {
		Region string `yaml:"region"`
	} `yaml:"sns"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Send    struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"send"`
		Accept struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"accept"`
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"rate"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Tokens.Kind == "" {
		c.Tokens.Kind = "storage"
	}
	if c.Tokens.Redis.Prefix == "" {
		c.Tokens.Redis.Prefix = "rt:"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "10m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "672h" // 4 semanas
	}
	if c.Verification.TTL == "" {
		c.Verification.TTL = "15m"
	}
	if c.Verification.GCInterval == "" {
		c.Verification.GCInterval = "10m"
	}
	if c.Delivery.Mode == "" {
		c.Delivery.Mode = "log"
	}
	if c.Delivery.Workers == 0 {
		c.Delivery.Workers = 4
	}
	if c.Delivery.QueueSize == 0 {
		c.Delivery.QueueSize = 256
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SNS.Region == "" {
		c.SNS.Region = "us-east-1"
	}
	if c.Rate.Send.Limit == 0 {
		c.Rate.Send.Limit = 5
	}
	if c.Rate.Send.Window == "" {
		c.Rate.Send.Window = "10m"
	}
	if c.Rate.Accept.Limit == 0 {
		c.Rate.Accept.Limit = 10
	}
	if c.Rate.Accept.Window == "" {
		c.Rate.Accept.Window = "1m"
	}

	// Overrides por env + salvaguarda prod
	c.applyEnvOverrides()

	// validate string durations
	for _, d := range []string{
		c.Storage.Postgres.ConnMaxLifetime,
		c.JWT.AccessTTL,
		c.JWT.RefreshTTL,
		c.Verification.TTL,
		c.Verification.GCInterval,
		c.Rate.Send.Window,
		c.Rate.Accept.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Guardia dura: en prod el delivery log expone códigos, no se permite.
	if strings.EqualFold(c.App.Env, "prod") && c.Delivery.Mode == "log" {
		return nil, fmt.Errorf("config: delivery.mode=log is not allowed in prod")
	}

	return &c, nil
}

// Validate chequea valores críticos que no tienen default razonable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		return fmt.Errorf("config: jwt.access_secret is required")
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		return fmt.Errorf("config: jwt.refresh_secret is required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("config: jwt access and refresh secrets must differ")
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required for driver postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Tokens.Kind {
	case "storage":
	case "redis":
		if strings.TrimSpace(c.Tokens.Redis.Addr) == "" {
			return fmt.Errorf("config: tokens.redis.addr is required for kind redis")
		}
	default:
		return fmt.Errorf("config: unknown tokens kind %q", c.Tokens.Kind)
	}
	return nil
}

// Dur parsea una duración ya validada por Load.
func Dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// TOKENS
	if v, ok := getEnvStr("TOKENS_KIND"); ok {
		c.Tokens.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Tokens.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Tokens.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Tokens.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ACCESS_SECRET"); ok {
		c.JWT.AccessSecret = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_SECRET"); ok {
		c.JWT.RefreshSecret = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	// Test-only overrides (CI/e2e): pisan lo anterior si están seteadas
	if v, ok := getEnvStr("TEST_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("TEST_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	// VERIFICATION
	if v, ok := getEnvStr("VERIFICATION_TTL"); ok {
		c.Verification.TTL = v
	}
	if v, ok := getEnvStr("VERIFICATION_GC_INTERVAL"); ok {
		c.Verification.GCInterval = v
	}

	// DELIVERY
	if v, ok := getEnvStr("DELIVERY_MODE"); ok {
		c.Delivery.Mode = strings.ToLower(v)
	}
	if v, ok := getEnvInt("DELIVERY_WORKERS"); ok {
		c.Delivery.Workers = v
	}
	if v, ok := getEnvInt("DELIVERY_QUEUE_SIZE"); ok {
		c.Delivery.QueueSize = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v) // auto|starttls|ssl|none
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	// SNS
	if v, ok := getEnvStr("SNS_REGION"); ok {
		c.SNS.Region = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_SEND_LIMIT"); ok {
		c.Rate.Send.Limit = v
	}
	if v, ok := getEnvStr("RATE_SEND_WINDOW"); ok {
		c.Rate.Send.Window = v
	}
	if v, ok := getEnvInt("RATE_ACCEPT_LIMIT"); ok {
		c.Rate.Accept.Limit = v
	}
	if v, ok := getEnvStr("RATE_ACCEPT_WINDOW"); ok {
		c.Rate.Accept.Window = v
	}
	if v, ok := getEnvStr("RATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvInt("RATE_REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
