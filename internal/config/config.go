package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servidor
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Inngest      InngestConfig
	Logging      LoggingConfig
	Email        EmailConfig
	Storage      StorageConfig
	Documents    DocumentsConfig
	Subscription SubscriptionConfig
	Auth         AuthConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	QueryTimeout  time.Duration
	RunMigrations bool
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey   string
	SigningKey string
	AppID      string
	Dev        bool
	SweepCron  string
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de email
type EmailConfig struct {
	ResendAPIKey string
	From         string
}

// StorageConfig representa el almacenamiento S3 compatible de los PDF
type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// DocumentsConfig representa los valores por defecto de los documentos
type DocumentsConfig struct {
	DefaultDueDays    int
	QuoteValidityDays int
	IdempotencyTTL    time.Duration
}

// SubscriptionConfig representa la configuración del aviso de vencimiento
type SubscriptionConfig struct {
	WarningDays int
	CacheTTL    time.Duration
}

// AuthConfig representa la configuración de autenticación por API key
type AuthConfig struct {
	AdminEmails []string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// El archivo .env es opcional
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8081"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8081"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("PGHOST", "localhost"),
			Port:          getEnv("PGPORT", "5432"),
			User:          getEnv("PGUSER", "postgres"),
			Password:      getEnv("PGPASSWORD", "postgres"),
			Name:          getEnv("PGDATABASE", "vyzo"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			QueryTimeout:  getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
			RunMigrations: getEnvAsBool("DB_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Inngest: InngestConfig{
			EventKey:   getEnv("INNGEST_EVENT_KEY", ""),
			SigningKey: getEnv("INNGEST_SIGNING_KEY", ""),
			AppID:      getEnv("INNGEST_APP_ID", "vyzo-service"),
			Dev:        getEnvAsBool("INNGEST_DEV", true),
			SweepCron:  getEnv("INNGEST_SWEEP_CRON", "0 * * * *"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", "Vyzo <documents@vyzo.app>"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:          getEnv("STORAGE_BUCKET", "vyzo-documents"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getEnvAsBool("STORAGE_USE_PATH_STYLE", true),
		},
		Documents: DocumentsConfig{
			DefaultDueDays:    getEnvAsInt("DOCUMENT_DEFAULT_DUE_DAYS", 30),
			QuoteValidityDays: getEnvAsInt("DOCUMENT_QUOTE_VALIDITY_DAYS", 30),
			IdempotencyTTL:    getEnvAsDuration("DOCUMENT_IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Subscription: SubscriptionConfig{
			WarningDays: getEnvAsInt("SUBSCRIPTION_WARNING_DAYS", 7),
			CacheTTL:    getEnvAsDuration("SUBSCRIPTION_CACHE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			AdminEmails: getEnvAsList("AUTH_ADMIN_EMAILS"),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList obtiene una variable de entorno separada por comas
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// StorageEnabled indica si hay credenciales para el almacenamiento de PDF
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}
