package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Feed     FeedConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int64 `validate:"gte=1"`
}

// DSN renders the lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AppConfig struct {
	LogLevel string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int `validate:"gte=0"`
}

// FeedConfig selects where brand feeds are loaded from.
type FeedConfig struct {
	Source            string `validate:"oneof=file s3 drive postgres"`
	Dir               string
	Prefix            string
	ExcludedYears     []int
	FillMissingMonths bool
	ReloadOnStart     bool
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	FolderPath      string
}

type EngineConfig struct {
	DirectSellThroughWeeks float64 `validate:"gte=0,lte=520"`
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration once from .env, the environment and defaults.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		setDefaults()
		viper.AutomaticEnv()
		instance = read()
	})

	return instance
}

// Validate checks the sections that have constrained values.
func (c *Config) Validate() error {
	v := validator.New()
	for name, section := range map[string]interface{}{
		"database": c.Database,
		"cache":    c.Cache,
		"feed":     c.Feed,
		"engine":   c.Engine,
	} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("invalid %s config: %w", name, err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 15)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "stockweeks")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONCURRENCY", 10)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
	viper.SetDefault("FEED_SOURCE", "file")
	viper.SetDefault("FEED_DIR", "./data/feeds")
	viper.SetDefault("FEED_PREFIX", "")
	viper.SetDefault("FEED_EXCLUDED_YEARS", "2023")
	viper.SetDefault("FEED_FILL_MISSING_MONTHS", true)
	viper.SetDefault("FEED_RELOAD_ON_START", true)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("DRIVE_FOLDER_ID", "")
	viper.SetDefault("DRIVE_FOLDER_PATH", "")
	viper.SetDefault("ENGINE_DIRECT_SELL_THROUGH_WEEKS", 25)
}

func read() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			DBName:         viper.GetString("DB_NAME"),
			SSLMode:        viper.GetString("DB_SSLMODE"),
			MaxConcurrency: viper.GetInt64("DB_MAX_CONCURRENCY"),
		},
		App: AppConfig{
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Enabled:          viper.GetBool("CACHE_ENABLED"),
			RedisURL:         viper.GetString("REDIS_URL"),
			RedisHost:        viper.GetString("REDIS_HOST"),
			RedisPort:        viper.GetString("REDIS_PORT"),
			RedisPassword:    viper.GetString("REDIS_PASSWORD"),
			RedisDB:          viper.GetInt("REDIS_DB"),
			ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
		},
		Feed: FeedConfig{
			Source:            strings.ToLower(viper.GetString("FEED_SOURCE")),
			Dir:               viper.GetString("FEED_DIR"),
			Prefix:            viper.GetString("FEED_PREFIX"),
			ExcludedYears:     ParseYears(viper.GetString("FEED_EXCLUDED_YEARS")),
			FillMissingMonths: viper.GetBool("FEED_FILL_MISSING_MONTHS"),
			ReloadOnStart:     viper.GetBool("FEED_RELOAD_ON_START"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			Region:    viper.GetString("STORAGE_REGION"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			FolderPath:      viper.GetString("DRIVE_FOLDER_PATH"),
		},
		Engine: EngineConfig{
			DirectSellThroughWeeks: viper.GetFloat64("ENGINE_DIRECT_SELL_THROUGH_WEEKS"),
		},
	}
}

// ParseYears parses a comma or space separated year list. Invalid entries are skipped.
func ParseYears(raw string) []int {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	years := make([]int, 0, len(fields))
	for _, f := range fields {
		y, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	return years
}
