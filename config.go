package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`

	DBPath          string `yaml:"db_path"`
	CSVPath         string `yaml:"csv_path"`
	ReportOutputDir string `yaml:"report_output_dir"`

	RequestDelaySeconds   float64 `yaml:"request_delay_seconds"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	MaxRetries            int     `yaml:"max_retries"`

	UpdateSchedule string `yaml:"update_schedule"`
	Timezone       string `yaml:"timezone"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	ListenAddr string `yaml:"listen_addr"`

	// Severity color mapping, band name -> CSS-class substrings. Merged
	// over the built-in defaults so class-name drift on the source page is
	// a config change.
	ColorClasses map[string][]string `yaml:"color_classes"`

	// Entity-name substrings excluded when aggregating by region
	// (aggregate totals and the regional headers themselves).
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// Optional per-region populations; when a region is present, its mean
	// is scaled per 10k population.
	RegionPopulations map[string]float64 `yaml:"region_populations"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.BaseURL, "BASE_URL")
	envOverride(&cfg.UserAgent, "USER_AGENT")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.CSVPath, "CSV_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverrideFloat(&cfg.RequestDelaySeconds, "REQUEST_DELAY_SECONDS")
	envOverrideInt(&cfg.RequestTimeoutSeconds, "REQUEST_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.MaxRetries, "MAX_RETRIES")
	envOverride(&cfg.UpdateSchedule, "UPDATE_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")

	if patterns := os.Getenv("EXCLUDE_PATTERNS"); patterns != "" {
		cfg.ExcludePatterns = nil
		for _, p := range strings.Split(patterns, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.ExcludePatterns = append(cfg.ExcludePatterns, p)
			}
		}
	}

	// Defaults
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://uec.hse.ie/uec/TGAR.php"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./trolleygar.db"
	}
	if cfg.CSVPath == "" {
		cfg.CSVPath = "./trolleygar_data.csv"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.RequestDelaySeconds == 0 {
		cfg.RequestDelaySeconds = 1
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = 30
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.UpdateSchedule == "" {
		cfg.UpdateSchedule = "0 9 * * *"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if len(cfg.ExcludePatterns) == 0 {
		cfg.ExcludePatterns = []string{"Total", regionPrefix}
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate
	if cfg.RequestDelaySeconds < 0 {
		log.Fatalf("invalid request_delay_seconds '%f': must be >= 0", cfg.RequestDelaySeconds)
	}
	if cfg.RequestTimeoutSeconds < 1 {
		log.Fatalf("invalid request_timeout_seconds '%d': must be >= 1", cfg.RequestTimeoutSeconds)
	}
	if cfg.MaxRetries < 0 {
		log.Fatalf("invalid max_retries '%d': must be >= 0", cfg.MaxRetries)
	}
	if cfg.SlackBotToken != "" && cfg.SlackChannelID == "" {
		log.Fatalf("slack_channel_id is required when slack_bot_token is set")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds * float64(time.Second))
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
