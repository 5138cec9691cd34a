package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Analysis Analysis `mapstructure:"analysis"`
	Report   Report   `mapstructure:"report"`
}

// Database holds the configuration for the relational store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Analysis holds the tunables of the analytical core.
type Analysis struct {
	StartYear        int     `mapstructure:"start_year"`
	EndYear          int     `mapstructure:"end_year"`
	Elasticity       float64 `mapstructure:"elasticity"`       // trade/tariff elasticity
	ForecastHorizon  int     `mapstructure:"forecast_horizon"` // periods ahead
	VolatilityWeight float64 `mapstructure:"volatility_weight"`
	EnvRiskWeight    float64 `mapstructure:"env_risk_weight"`
}

// Report holds the configuration for the reporting layer.
type Report struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	v.SetDefault("database.dsn", "data/trade_analysis.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("analysis.start_year", 2020)
	v.SetDefault("analysis.end_year", 2023)
	v.SetDefault("analysis.elasticity", -0.5)
	v.SetDefault("analysis.forecast_horizon", 3)
	v.SetDefault("analysis.volatility_weight", 0.5)
	v.SetDefault("analysis.env_risk_weight", 0.5)
	v.SetDefault("report.output_dir", "analysis")

	err = v.ReadInConfig()
	if err != nil {
		// Defaults and env cover everything, so a missing file is not fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}
