package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the name of the JSON config file looked up by Load.
const FileName = "annotate.cfg.json"

// StorageConfig selects and configures the project storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// SQLiteConfig holds SQLite storage settings. An empty Path keeps the
// database in memory; DumpPath and DumpInterval then snapshot it to disk
// periodically.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// RenderConfig describes the default output of the render command.
type RenderConfig struct {
	Width      int    `json:"width" mapstructure:"width"`
	Height     int    `json:"height" mapstructure:"height"`
	Background string `json:"background" mapstructure:"background"`
	// CRS is the EPSG code of Extent.
	CRS    int    `json:"crs" mapstructure:"crs"`
	Extent string `json:"extent" mapstructure:"extent"`
}

// setDefaults registers every default value.
func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("render.width", 1024)
	viper.SetDefault("render.height", 512)
	viper.SetDefault("render.background", "#ffffff")
	viper.SetDefault("render.crs", 4326)
	viper.SetDefault("render.extent", "-180,-90,180,90")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.sqlite.path", "./annotations.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "annotations")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "annotate")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets the defaults and reads FileName from configDir. The defaults
// stay in effect when the file cannot be read; the returned error then
// wraps viper.ConfigFileNotFoundError for a missing file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
	}
}

// GetDBConfig returns the Postgres connection section.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslmode"),
	}
}

// GetRenderConfig returns the render section.
func GetRenderConfig() RenderConfig {
	return RenderConfig{
		Width:      viper.GetInt("render.width"),
		Height:     viper.GetInt("render.height"),
		Background: viper.GetString("render.background"),
		CRS:        viper.GetInt("render.crs"),
		Extent:     viper.GetString("render.extent"),
	}
}
