package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration: defaults, then an
// optional webforge.yaml, then WEBFORGE_* environment variables.
type Config struct {
	ServiceBaseURL string        `mapstructure:"service_base_url"`
	DatabasePath   string        `mapstructure:"database_path"`
	LogPath        string        `mapstructure:"log_path"`
	PublishDir     string        `mapstructure:"publish_dir"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PollBackoff    time.Duration `mapstructure:"poll_backoff"`
	PollMaxWait    time.Duration `mapstructure:"poll_max_wait"`
	JobTimeout     time.Duration `mapstructure:"job_timeout"`
	CrashCountdown time.Duration `mapstructure:"crash_countdown"`
	CrashCooldown  time.Duration `mapstructure:"crash_cooldown"`
}

// Load resolves the configuration. A missing config file is fine; defaults
// plus environment cover every knob.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("service_base_url", "https://api.webforge.app")
	v.SetDefault("database_path", "")
	v.SetDefault("log_path", ".webforge/webforge.log")
	v.SetDefault("publish_dir", ".webforge/published")
	v.SetDefault("http_timeout", 60*time.Second)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("poll_backoff", 250*time.Millisecond)
	v.SetDefault("poll_max_wait", 5*time.Second)
	v.SetDefault("job_timeout", 4*time.Minute)
	v.SetDefault("crash_countdown", 3*time.Second)
	v.SetDefault("crash_cooldown", 15*time.Second)

	v.SetConfigName("webforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "webforge"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	v.SetEnvPrefix("WEBFORGE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv loads a .env file found at or above the working directory. Missing
// files are not an error; the environment may already be set.
func LoadEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				log.Printf("config: failed to load %s: %v", envPath, err)
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
