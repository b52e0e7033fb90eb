package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	databaseDSN       = "DATABASE_DSN"
	exchangeAPIKey    = "EXCHANGE_API_KEY"
	exchangeAPISecret = "EXCHANGE_API_SECRET"
)

// Config ...
type Config struct {
	DB    string `yaml:"db_dsn"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	Market struct {
		BaseURL string        `yaml:"base_url"`
		WSURL   string        `yaml:"ws_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"market"`
	Exchange struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"exchange"`
	Jaeger struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Раннер
	Workers       int
	ExecuteCron   string
	RecommendCron string

	// Рекомендации
	Timeframe     string
	HistoryLimit  int
	RecommendTopN int

	// Symbols streamed over the websocket to keep quotes warm.
	WatchSymbols []string `yaml:"watch_symbols"`
}

func NewConfig() (*Config, error) {
	// Local development keeps secrets in .env, absence is fine.
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Workers:       intFromEnv("ENGINE_WORKERS", 4),
		ExecuteCron:   getenvDefault("EXECUTE_CRON", "@every 1m"),
		RecommendCron: getenvDefault("RECOMMEND_CRON", "@every 15m"),

		Timeframe:     getenvDefault("TIMEFRAME", "1h"),
		HistoryLimit:  intFromEnv("HISTORY_LIMIT", 250),
		RecommendTopN: intFromEnv("RECOMMEND_TOP_N", 10),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if key := os.Getenv(exchangeAPIKey); key != "" {
		config.Exchange.APIKey = key
	}
	if secret := os.Getenv(exchangeAPISecret); secret != "" {
		config.Exchange.APISecret = secret
	}
	if config.Redis.CacheTTL <= 0 {
		config.Redis.CacheTTL = durationFromEnv("CACHE_TTL", "30s")
	}

	return &config, nil
}

func getenvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("env %s is required", key))
	}
	return v
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
