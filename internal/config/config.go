package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/techbench/diagstation/internal/report"
)

// Config holds the diagnostic station configuration.
type Config struct {
	ReportDir         string        `mapstructure:"report_dir"`
	DatabasePath      string        `mapstructure:"database"`
	SingletonPort     int           `mapstructure:"singleton_port"`
	TestFileSizeMB    int           `mapstructure:"test_file_size_mb"`
	KeyboardThreshold int           `mapstructure:"keyboard_threshold"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
	RetentionDays     int           `mapstructure:"retention_days"`
}

// Load reads configuration from file and environment.
func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("diagstation")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/diagstation")
	}

	viper.SetDefault("report_dir", report.DefaultDir())
	viper.SetDefault("database", "diagstation.db")
	viper.SetDefault("singleton_port", 47851)
	viper.SetDefault("test_file_size_mb", 100)
	viper.SetDefault("keyboard_threshold", 70)
	viper.SetDefault("query_timeout", "10s")
	viper.SetDefault("retention_days", 0)

	viper.SetEnvPrefix("DIAG")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
