package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Notifier backend selectors.
const (
	NotifierLog      = "log"
	NotifierMailtrap = "mailtrap"
	NotifierQueue    = "queue"
)

// Queue backend selectors.
const (
	QueueRabbitMQ = "rabbitmq"
	QueuePubSub   = "pubsub"
)

type Config struct {
	ServerPort int
	DevMode    bool
	Database   DatabaseConfig
	Auth       AuthConfig
	Notifier   NotifierConfig
	Mailtrap   MailtrapConfig
	Queue      QueueConfig
	RabbitMQ   RabbitMQConfig
	PubSub     PubSubConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	ResetTTL   time.Duration
	BcryptCost int
}

type NotifierConfig struct {
	// Backend selects how reset mail leaves the process: "log" (default),
	// "mailtrap", or "queue".
	Backend string
}

type MailtrapConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
	ResetURL  string
}

type QueueConfig struct {
	// Backend selects the broker: "rabbitmq" or "pubsub".
	Backend string
	Channel string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		DevMode:    os.Getenv("ENV") == "dev",
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "authgate"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "authgate_db"),
			UseSSL:   getEnvBool("DB_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvDuration("JWT_TTL", 24*time.Hour),
			ResetTTL:   getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
		},
		Notifier: NotifierConfig{
			Backend: getEnv("NOTIFIER_BACKEND", NotifierLog),
		},
		Mailtrap: MailtrapConfig{
			APIURL:    getEnv("MAILTRAP_API_URL", "https://send.api.mailtrap.io/api/send"),
			APIKey:    getEnv("MAILTRAP_API_KEY", ""),
			FromEmail: getEnv("MAILTRAP_FROM_EMAIL", "noreply@example.com"),
			FromName:  getEnv("MAILTRAP_FROM_NAME", "Authgate"),
			ResetURL:  getEnv("RESET_URL_BASE", "https://example.com/reset-password"),
		},
		Queue: QueueConfig{
			Backend: getEnv("QUEUE_BACKEND", QueueRabbitMQ),
			Channel: getEnv("QUEUE_CHANNEL", "password-reset-mail"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTODELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 1),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "1" || valueStr == "true" || valueStr == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
