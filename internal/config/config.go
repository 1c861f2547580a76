package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds runtime settings read from the environment.
type Config struct {
	ListenAddress      string
	APIBaseURL         string
	APIToken           string
	RequestTimeout     time.Duration
	MongoURI           string
	MongoDB            string
	MQTTBroker         string
	MQTTTopic          string
	MQTTClientID       string
	RateLimitPerMinute int
	TrustProxyHeaders  bool
	CertExpiryDays     int
	LogLevel           string
	LogFormat          string
}

// Load reads a .env file when present, then the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		ListenAddress:      ":" + getEnv("PORT", "8080"),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
		APIToken:           os.Getenv("API_AUTH_TOKEN"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "vessel_ops"),
		MQTTBroker:         os.Getenv("MQTT_BROKER"),
		MQTTTopic:          getEnv("MQTT_TOPIC", "vessel-ops/events"),
		MQTTClientID:       getEnv("MQTT_CLIENT_ID", "vessel-ops-dashboard"),
		RateLimitPerMinute: 120,
		CertExpiryDays:     30,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		RequestTimeout:     10 * time.Second,
	}

	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid API_TIMEOUT %q", v)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", v)
		}
		cfg.RateLimitPerMinute = n
	}
	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TRUST_PROXY_HEADERS %q", v)
		}
		cfg.TrustProxyHeaders = b
	}
	if v := os.Getenv("CERT_EXPIRY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CERT_EXPIRY_DAYS %q", v)
		}
		cfg.CertExpiryDays = n
	}

	return cfg, nil
}

// ConfigureLogging applies LogLevel and LogFormat to the standard logrus logger.
func (c Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
