package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"kasap-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	HTTPPort       string
	GRPCHealthAddr string
	JWT            JWT
	DB             DB
	Redis          Redis
	Kafka          Kafka
	SMTP           SMTP
	TMPLDir        string
	Cleanup        Cleanup
}

type JWT struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessExp time.Duration
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers     []string
	EventsTopic string
	EmailTopic  string
	GroupID     string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

type Cleanup struct {
	SlotsInterval  time.Duration
	TokensInterval time.Duration
}

func Load(log *zap.Logger) *Config {
	return &Config{
		HTTPPort:       getEnvDefault("HTTP_PORT", ":8080"),
		GRPCHealthAddr: getEnvDefault("GRPC_HEALTH_ADDR", ":9090"),
		JWT: JWT{
			Secret:    getEnv("JWT_SECRET", log),
			Issuer:    getEnvDefault("JWT_ISSUER", "kasapapp"),
			Audience:  getEnvDefault("JWT_AUDIENCE", "kasapapp-mobile"),
			AccessExp: parseDurationWithDays(getEnvDefault("ACCESS_EXP", "7d"), log),
		},
		DB: LoadDB(log),
		Redis: Redis{
			Enabled:  getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:     getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvDefault("REDIS_PASSWORD", ""),
			DB:       atoiDefault(getEnvDefault("REDIS_DB", "0"), 0),
		},
		Kafka:   LoadKafka(),
		SMTP:    LoadSMTP(),
		TMPLDir: TemplateDir(),
		Cleanup: Cleanup{
			SlotsInterval:  parseDurationWithDays(getEnvDefault("CLEANUP_SLOTS_INTERVAL", "1h"), log),
			TokensInterval: parseDurationWithDays(getEnvDefault("CLEANUP_TOKENS_INTERVAL", "30m"), log),
		},
	}
}

// LoadDB reads only the database settings; cmd/migrate and cmd/cleanup need nothing else.
func LoadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:            getEnv("DB_HOST", log),
			Port:            getEnv("DB_PORT", log),
			User:            getEnv("DB_USER", log),
			Password:        getEnv("DB_PASSWORD", log),
			Name:            getEnv("DB_NAME", log),
			SSLMode:         getEnvDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    atoiDefault(getEnvDefault("DB_MAX_OPEN_CONNS", "20"), 20),
			MaxIdleConns:    atoiDefault(getEnvDefault("DB_MAX_IDLE_CONNS", "5"), 5),
			ConnMaxLifetime: parseDurationWithDays(getEnvDefault("DB_CONN_MAX_LIFETIME", "30m"), log),
		},
	}
}

func LoadKafka() Kafka {
	return Kafka{
		Brokers:     splitAndTrim(getEnvDefault("KAFKA_BROKERS", "")),
		EventsTopic: getEnvDefault("KAFKA_TOPIC_EVENTS", "kasap.events"),
		EmailTopic:  getEnvDefault("KAFKA_TOPIC_EMAIL", "kasap.email"),
		GroupID:     getEnvDefault("KAFKA_GROUP_ID", "kasap-notifier"),
	}
}

func LoadSMTP() SMTP {
	return SMTP{
		Host:     getEnvDefault("SMTP_HOST", ""),
		Port:     atoiDefault(getEnvDefault("SMTP_PORT", "465"), 465),
		User:     getEnvDefault("SMTP_USER", ""),
		Password: getEnvDefault("SMTP_PASSWORD", ""),
		From:     getEnvDefault("SMTP_FROM", ""),
		SSL:      getEnvDefault("SMTP_SSL", "true") == "true",
	}
}

func TemplateDir() string {
	return getEnvDefault("TMPL_DIR", "templates")
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

// parseDurationWithDays accepts Go durations plus a "<n>d" day suffix.
func parseDurationWithDays(s string, log *zap.Logger) time.Duration {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			log.Warn("invalid duration", zap.String("value", s), zap.Error(err))
			return 0
		}
		return time.Duration(days) * 24 * time.Hour
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn("invalid duration", zap.String("value", s), zap.Error(err))
		return 0
	}
	return d
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
