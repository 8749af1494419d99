package config

import (
	"github.com/spf13/viper"
)

// Config is populated from environment variables. In deployed environments
// the DB and AWS settings come from the pod spec; LOCAL_DEV=true routes AWS
// calls to LocalStack and switches logging to console output.
type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	ServerPort string `mapstructure:"SERVER_PORT"`

	AWSRegion            string `mapstructure:"AWS_REGION"`
	AWSEndpoint          string `mapstructure:"AWS_ENDPOINT"`
	NotificationQueueURL string `mapstructure:"NOTIFICATION_SQS_QUEUE_URL"`

	SettingsAPIURL string `mapstructure:"SETTINGS_API_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	OTLPEndpoint   string `mapstructure:"OTLP_ENDPOINT"`

	EmailSender string `mapstructure:"EMAIL_SENDER"`
	EmailDomain string `mapstructure:"EMAIL_DOMAIN"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	IsLocalDev bool `mapstructure:"LOCAL_DEV"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "timesheet_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("NOTIFICATION_SQS_QUEUE_URL", "http://localstack:4566/000000000000/notification-queue")
	viper.SetDefault("SETTINGS_API_URL", "http://localhost:8081")
	viper.SetDefault("REDIS_ADDR", "redis:6379")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("EMAIL_SENDER", "timesheets@consulting-portal.com")
	viper.SetDefault("EMAIL_DOMAIN", "consulting-portal.com")
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("LOCAL_DEV", false)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
