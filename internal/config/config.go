package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "hostel-portal/common/config"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only meant for local runs; main warns when it is in use.
const DefaultJWTSecret = "hostel-portal-dev-secret"

// Config is the hostel-portal service configuration.
type Config struct {
	HTTP struct {
		Addr           string
		RequestTimeout time.Duration
		CORSOrigins    []string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	Log       struct {
		Level  string
		Format string
	}
	Auth struct {
		JWTSecret      string
		JWTTTL         time.Duration
		OTPTTL         time.Duration
		OTPMaxAttempts int
	}
	Mail struct {
		APIURL string
		APIKey string
		From   string
	}
	Fees struct {
		MessFeePerMonth int
		DueDays         int
		AccrualCron     string // empty disables the job
	}
	MQTT         commoncfg.MQTTConfig
	EventsStream string
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.RequestTimeout = parseDuration(getEnv("HTTP_REQUEST_TIMEOUT", "10s"), 10*time.Second)
	cfg.HTTP.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:5173"))

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:         "localhost",
		Port:         5432,
		User:         "postgres",
		Password:     "postgres",
		Database:     "hostel",
		SSLMode:      "disable",
		MaxConns:     25,
		MaxIdle:      5,
		ConnLifetime: 30 * time.Minute,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", DefaultJWTSecret)
	cfg.Auth.JWTTTL = parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour)
	cfg.Auth.OTPTTL = parseDuration(getEnv("OTP_TTL", "10m"), 10*time.Minute)
	cfg.Auth.OTPMaxAttempts = parseInt(getEnv("OTP_MAX_ATTEMPTS", "5"), 5)

	cfg.Mail.APIURL = getEnv("MAIL_API_URL", "")
	cfg.Mail.APIKey = getEnv("MAIL_API_KEY", "")
	cfg.Mail.From = getEnv("MAIL_FROM", "Hostel Office <no-reply@hostel.local>")

	cfg.Fees.MessFeePerMonth = parseInt(getEnv("MESS_FEE_PER_MONTH", "3500"), 3500)
	cfg.Fees.DueDays = parseInt(getEnv("FEE_DUE_DAYS", "15"), 15)
	cfg.Fees.AccrualCron = getEnv("FEE_ACCRUAL_CRON", "")

	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:   "tcp://localhost:1883",
		ClientID: "hostel-portal",
		QoS:      1,
		Topic:    "hostel/notices",
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.EventsStream = getEnv("EVENTS_STREAM", "hostel:allotments")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
