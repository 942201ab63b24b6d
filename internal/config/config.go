package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Clinic     ClinicConfig
	Scheduling SchedulingConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
	// ChatbotToken is the static shared secret for the intake endpoints.
	ChatbotToken string `mapstructure:"chatbot_token"`
}

// ClinicConfig is the clinic-wide working-hours constant. The UTC offset is
// fixed per clinic; DST is not modeled.
type ClinicConfig struct {
	DayStartHour        int  `mapstructure:"day_start_hour"`
	DayEndHour          int  `mapstructure:"day_end_hour"`
	LunchStartHour      int  `mapstructure:"lunch_start_hour"`
	LunchEndHour        int  `mapstructure:"lunch_end_hour"`
	SlotDurationMinutes int  `mapstructure:"slot_duration_minutes"`
	UTCOffsetMinutes    int  `mapstructure:"utc_offset_minutes"`
	AllowSunday         bool `mapstructure:"allow_sunday"`
}

type SchedulingConfig struct {
	// OnStoreError picks the policy when a block or conflict-check read
	// fails: "admit" (fail open, the default) or "reject".
	OnStoreError string `mapstructure:"on_store_error"`
}

func (c SchedulingConfig) RejectOnStoreError() bool {
	return c.OnStoreError == "reject"
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("clinic.day_start_hour", 8)
	viper.SetDefault("clinic.day_end_hour", 18)
	viper.SetDefault("clinic.lunch_start_hour", 12)
	viper.SetDefault("clinic.lunch_end_hour", 13)
	viper.SetDefault("clinic.slot_duration_minutes", 30)
	viper.SetDefault("clinic.utc_offset_minutes", -180)
	viper.SetDefault("scheduling.on_store_error", "admit")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
