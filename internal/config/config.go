package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Ticket    TicketConfig    `mapstructure:"ticket"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	OpenTDB   OpenTDBConfig   `mapstructure:"opentdb"`
	Events    EventsConfig    `mapstructure:"events"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // секунды
	WriteTimeout   int      `mapstructure:"write_timeout"` // секунды
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// AdminKey открывает экспорт результатов и импорт в банк. Пустой ключ отключает эти маршруты.
	AdminKey string `mapstructure:"admin_key"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel", "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт). Для 'single' используется первый.
	Addrs []string `mapstructure:"addrs"`

	// Addr используется, если Addrs пустой
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: только для режима "sentinel"
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// Enabled сообщает, задан ли хотя бы один адрес Redis
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// TicketConfig содержит настройки тикетов игровых сессий
type TicketConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

// Expiry возвращает время жизни тикета
func (t TicketConfig) Expiry() time.Duration {
	return time.Duration(t.ExpiryMinutes) * time.Minute
}

// QuizConfig содержит настройки викторины
type QuizConfig struct {
	Source               string  `mapstructure:"source"`        // opentdb | bank
	SessionStore         string  `mapstructure:"session_store"` // memory | redis
	DefaultQuestionCount int     `mapstructure:"default_question_count"`
	MaxQuestionCount     int     `mapstructure:"max_question_count"`
	PassThreshold        float64 `mapstructure:"pass_threshold"`
	SessionTTLMinutes    int     `mapstructure:"session_ttl_minutes"`
}

// SessionTTL возвращает время жизни незавершенной сессии
func (q QuizConfig) SessionTTL() time.Duration {
	return time.Duration(q.SessionTTLMinutes) * time.Minute
}

// OpenTDBConfig содержит настройки клиента Open Trivia DB
type OpenTDBConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout возвращает таймаут HTTP запроса к OpenTDB
func (o OpenTDBConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// EventsConfig содержит настройки публикации событий. Пустой AMQPURL отключает брокер.
type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange"`
}

// RateLimitConfig содержит лимиты запросов
type RateLimitConfig struct {
	CreatePerMinute int `mapstructure:"create_per_minute"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.allowed_origins", []string{"*"})

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("ticket.expiry_minutes", 60)

	vip.SetDefault("quiz.source", "opentdb")
	vip.SetDefault("quiz.session_store", "memory")
	vip.SetDefault("quiz.default_question_count", 10)
	vip.SetDefault("quiz.max_question_count", 50)
	vip.SetDefault("quiz.pass_threshold", 0.7)
	vip.SetDefault("quiz.session_ttl_minutes", 30)

	vip.SetDefault("opentdb.base_url", "https://opentdb.com")
	vip.SetDefault("opentdb.timeout_seconds", 10)

	vip.SetDefault("events.exchange", "trivia.events")

	vip.SetDefault("rate_limit.create_per_minute", 30)
}

func bindEnv(vip *viper.Viper) {
	// Server
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")
	vip.BindEnv("server.admin_key", "SERVER_ADMIN_KEY")

	// Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Ticket
	vip.BindEnv("ticket.secret", "TICKET_SECRET")
	vip.BindEnv("ticket.expiry_minutes", "TICKET_EXPIRY_MINUTES")

	// Quiz
	vip.BindEnv("quiz.source", "QUIZ_SOURCE")
	vip.BindEnv("quiz.session_store", "QUIZ_SESSION_STORE")
	vip.BindEnv("quiz.default_question_count", "QUIZ_DEFAULT_QUESTION_COUNT")
	vip.BindEnv("quiz.max_question_count", "QUIZ_MAX_QUESTION_COUNT")
	vip.BindEnv("quiz.pass_threshold", "QUIZ_PASS_THRESHOLD")
	vip.BindEnv("quiz.session_ttl_minutes", "QUIZ_SESSION_TTL_MINUTES")

	// OpenTDB
	vip.BindEnv("opentdb.base_url", "OPENTDB_BASE_URL")
	vip.BindEnv("opentdb.timeout_seconds", "OPENTDB_TIMEOUT_SECONDS")

	// Events
	vip.BindEnv("events.amqp_url", "EVENTS_AMQP_URL")
	vip.BindEnv("events.exchange", "EVENTS_EXCHANGE")

	// Rate limit
	vip.BindEnv("rate_limit.create_per_minute", "RATE_LIMIT_CREATE_PER_MINUTE")
}

// Load загружает конфигурацию: .env, затем файл, затем переменные окружения
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New() // Новый экземпляр, чтобы избежать глобального состояния
	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: env и значения по умолчанию достаточны
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Admin Key Set: %t", cfg.Server.AdminKey != "")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s, Enabled: %t", cfg.Redis.Mode, cfg.Redis.Enabled())
		log.Printf("Quiz Source: %s, Session Store: %s", cfg.Quiz.Source, cfg.Quiz.SessionStore)
		log.Printf("Events AMQP Enabled: %t", cfg.Events.AMQPURL != "")
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры и согласованность значений
func (c *Config) Validate() error {
	if c.Ticket.Secret == "" {
		return fmt.Errorf("ticket secret is required in config (check TICKET_SECRET env var)")
	}
	if c.Ticket.ExpiryMinutes <= 0 {
		return fmt.Errorf("ticket.expiry_minutes must be positive, got %d", c.Ticket.ExpiryMinutes)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}

	q := c.Quiz
	if q.DefaultQuestionCount < 1 {
		return fmt.Errorf("quiz.default_question_count must be at least 1, got %d", q.DefaultQuestionCount)
	}
	if q.MaxQuestionCount < q.DefaultQuestionCount {
		return fmt.Errorf("quiz.max_question_count (%d) must not be less than default_question_count (%d)",
			q.MaxQuestionCount, q.DefaultQuestionCount)
	}
	if q.PassThreshold <= 0 || q.PassThreshold > 1 {
		return fmt.Errorf("quiz.pass_threshold must be in (0, 1], got %v", q.PassThreshold)
	}
	if q.SessionTTLMinutes <= 0 {
		return fmt.Errorf("quiz.session_ttl_minutes must be positive, got %d", q.SessionTTLMinutes)
	}

	switch q.Source {
	case "opentdb", "bank":
	default:
		return fmt.Errorf("unsupported quiz.source: %q (expected opentdb or bank)", q.Source)
	}
	switch q.SessionStore {
	case "memory":
	case "redis":
		if !c.Redis.Enabled() {
			return fmt.Errorf("quiz.session_store=redis requires redis.addr or redis.addrs")
		}
	default:
		return fmt.Errorf("unsupported quiz.session_store: %q (expected memory or redis)", q.SessionStore)
	}

	if c.RateLimit.CreatePerMinute < 0 {
		return fmt.Errorf("rate_limit.create_per_minute must not be negative")
	}
	return nil
}
