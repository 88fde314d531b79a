package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPPort    string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Router  RouterConfig
	Gateway GatewayConfig
	Voucher VoucherConfig
	Notify  NotifyConfig
	Alert   AlertConfig
}

// RouterConfig describes the access point command channel.
type RouterConfig struct {
	Backend        string // "ssh" or "sim"
	Host           string
	Port           string
	User           string
	Password       string
	CommandTimeout time.Duration
}

// GatewayConfig holds mobile money gateway settings.
type GatewayConfig struct {
	SharedSecret string
	Currency     string
}

// VoucherConfig controls generated voucher codes.
type VoucherConfig struct {
	UsernameLength int
	PasswordLength int
}

type NotifyConfig struct {
	SMSEnabled      bool
	WhatsAppEnabled bool
	TelegramEnabled bool
}

// AlertConfig controls the daily report email.
type AlertConfig struct {
	Enabled      bool
	Recipients   []string
	Interval     time.Duration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

const (
	RouterBackendSSH = "ssh"
	RouterBackendSim = "sim"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "rapidwifi-zone"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPPort:    getenv("PORT", "3000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "rapidwifi"),
		DBUser:            getenv("DATABASE_USER", "rapidwifi"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		Router: RouterConfig{
			Backend:        normalizeBackend(getenv("ROUTER_BACKEND", RouterBackendSim)),
			Host:           getenv("ROUTER_HOST", "192.168.88.1"),
			Port:           getenv("ROUTER_PORT", "22"),
			User:           getenv("ROUTER_USER", "admin"),
			Password:       getenv("ROUTER_PASSWORD", ""),
			CommandTimeout: getenvDuration("ROUTER_COMMAND_TIMEOUT", 5*time.Second),
		},
		Gateway: GatewayConfig{
			SharedSecret: strings.TrimSpace(getenv("GATEWAY_SECRET", "")),
			Currency:     getenv("GATEWAY_CURRENCY", "XOF"),
		},
		Voucher: VoucherConfig{
			UsernameLength: getenvInt("VOUCHER_USERNAME_LENGTH", 4),
			PasswordLength: getenvInt("VOUCHER_PASSWORD_LENGTH", 5),
		},
		Notify: NotifyConfig{
			SMSEnabled:      getenvBool("ENABLE_SMS", false),
			WhatsAppEnabled: getenvBool("ENABLE_WHATSAPP", false),
			TelegramEnabled: getenvBool("ENABLE_TELEGRAM", false),
		},
		Alert: AlertConfig{
			Enabled:      getenvBool("ALERT_EMAIL_ENABLED", false),
			Recipients:   getenvList("ALERT_RECIPIENTS"),
			Interval:     getenvDuration("ALERT_INTERVAL", 24*time.Hour),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 25),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "alerts@rapidwifi.local"),
		},
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RouterBackendSSH:
		return RouterBackendSSH
	default:
		return RouterBackendSim
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvList(key string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
