package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	// DBDSN overrides the host/port/user settings when set. It is the file
	// path for sqlite and the database URL for libsql.
	DBDSN      string `mapstructure:"DB_DSN"`
	DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	SessionStore  string `mapstructure:"SESSION_STORE"`
	GinMode       string `mapstructure:"GIN_MODE"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS       float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `mapstructure:"RATE_LIMIT_BURST"`
	WriteLimitPerMin   int      `mapstructure:"WRITE_LIMIT_PER_MINUTE"`

	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`

	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAchievementsChannelID string `mapstructure:"DISCORD_ACHIEVEMENTS_CHANNEL_ID"`

	AllowUnarchive bool `mapstructure:"ALLOW_UNARCHIVE"`
	XPMaxRetries   int  `mapstructure:"XP_MAX_RETRIES"`
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "taskuser")
	v.SetDefault("DB_PASSWORD", "taskpassword")
	v.SetDefault("DB_NAME", "taskquest")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("SESSION_SECRET", "default-secret-key-change-me")
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("WRITE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("DISCORD_BOT_TOKEN", "")
	v.SetDefault("DISCORD_ACHIEVEMENTS_CHANNEL_ID", "")
	v.SetDefault("ALLOW_UNARCHIVE", true)
	v.SetDefault("XP_MAX_RETRIES", 5)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	// Comma separated values arrive from the environment as a single element.
	if len(cfg.CORSAllowedOrigins) == 1 && strings.Contains(cfg.CORSAllowedOrigins[0], ",") {
		cfg.CORSAllowedOrigins = strings.Split(cfg.CORSAllowedOrigins[0], ",")
	}
	if cfg.XPMaxRetries < 1 {
		cfg.XPMaxRetries = 1
	}

	return &cfg
}
