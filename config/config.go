package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`
	LogSQL  bool   `json:"log_sql"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`
	DbPath   string `json:"db_path"`

	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`

	Evolution struct {
		BaseURL           string `json:"base_url"`
		ApiKey            string `json:"api_key"`
		TimeoutSeconds    int    `json:"timeout_seconds"`
		RatePerMinute     int    `json:"rate_per_minute"`
		BreakerFailures   uint32 `json:"breaker_failures"`
		BreakerOpenSecond int    `json:"breaker_open_seconds"`
	} `json:"evolution"`

	Security struct {
		JwtSecret          string `json:"jwt_secret"`
		TokenValidHours    int    `json:"token_valid_hours"`
		CronSecret         string `json:"cron_secret"`
		WebhookToken       string `json:"webhook_token"`
		CloudVerifyToken   string `json:"cloud_verify_token"`
		CloudAppSecret     string `json:"cloud_app_secret"`
		AllowAnonymousCron bool   `json:"allow_anonymous_cron"`
	} `json:"security"`

	Sweeper struct {
		BatchSize           int  `json:"batch_size"`
		TimezoneOffsetHours *int `json:"timezone_offset_hours"`
		SchedulerEnabled    bool `json:"scheduler_enabled"`
		MessagesEverySecond int  `json:"messages_every_seconds"`
		AutoCloseEverySec   int  `json:"auto_close_every_seconds"`
	} `json:"sweeper"`
}

// Get lê o arquivo de configuração e aplica overrides de ambiente.
// Arquivo ausente não é erro: sobe só com env + defaults.
func Get(path string) Configuration {
	c, err := Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("config: failed to load")
	}
	return c
}

func Load(path string) (Configuration, error) {
	var c Configuration
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &c); err != nil {
			return c, err
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("config: file not found, using env and defaults")
	default:
		return c, err
	}

	applyEnv(&c)
	applyDefaults(&c)
	return c, nil
}

func applyEnv(c *Configuration) {
	setString(&c.ApiPort, "PORT")
	setString(&c.Database, "DATABASE")
	setString(&c.DbHost, "DB_HOST")
	setString(&c.DbPort, "DB_PORT")
	setString(&c.DbUser, "DB_USER")
	setString(&c.DbName, "DB_NAME")
	setString(&c.DbPass, "DB_PASS")
	setString(&c.DbPath, "DB_PATH")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Evolution.BaseURL, "EVOLUTION_API_URL")
	setString(&c.Evolution.ApiKey, "EVOLUTION_API_KEY")
	setString(&c.Security.JwtSecret, "JWT_SECRET")
	setString(&c.Security.CronSecret, "CRON_SECRET")
	setString(&c.Security.WebhookToken, "WEBHOOK_TOKEN")
	setString(&c.Security.CloudVerifyToken, "WEBHOOK_VERIFY_TOKEN")
	setString(&c.Security.CloudAppSecret, "WEBHOOK_APP_SECRET")

	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SCHEDULER_ENABLED")); v != "" {
		c.Sweeper.SchedulerEnabled = strings.EqualFold(v, "true") || v == "1"
	}
}

func applyDefaults(c *Configuration) {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPath == "" {
		c.DbPath = "db/database.db"
	}
	if c.Evolution.TimeoutSeconds <= 0 {
		c.Evolution.TimeoutSeconds = 30
	}
	if c.Evolution.RatePerMinute <= 0 {
		c.Evolution.RatePerMinute = 60
	}
	if c.Evolution.BreakerFailures == 0 {
		c.Evolution.BreakerFailures = 5
	}
	if c.Evolution.BreakerOpenSecond <= 0 {
		c.Evolution.BreakerOpenSecond = 60
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}
	if c.Security.TokenValidHours <= 0 {
		c.Security.TokenValidHours = 24
	}
	if c.Sweeper.BatchSize <= 0 {
		c.Sweeper.BatchSize = 50
	}
	if c.Sweeper.TimezoneOffsetHours == nil {
		brt := -3
		c.Sweeper.TimezoneOffsetHours = &brt
	}
	if c.Sweeper.MessagesEverySecond <= 0 {
		c.Sweeper.MessagesEverySecond = 60
	}
	if c.Sweeper.AutoCloseEverySec <= 0 {
		c.Sweeper.AutoCloseEverySec = 300
	}
}

// OffsetHours is the fixed UTC offset used for business-hours checks.
func (c Configuration) OffsetHours() int {
	if c.Sweeper.TimezoneOffsetHours == nil {
		return -3
	}
	return *c.Sweeper.TimezoneOffsetHours
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
