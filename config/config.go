package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Settings holds the static restaurant parameters and external service
// configuration. Built once in main and injected everywhere it is needed.
type Settings struct {
	Currency string

	// Opening hours as "HH:MM". Closing may be earlier than opening, which
	// means the kitchen closes past midnight.
	OpeningTime string
	ClosingTime string

	// Collection/delivery slots
	MinPrepMinutes int
	SlotMinutes    int

	// Delivery
	DeliveryFee          int64 // flat fee in pence
	FreeDeliveryOver     int64 // pence
	DeliveryOutwardCodes []string
	DeliveryETA          string
	PickupETA            string

	// Tipping options offered at checkout, in percent
	TipPercents []float64

	// Card gateway
	GatewayName          string
	GatewayBaseURL       string
	GatewaySecretKey     string
	GatewayWebhookSecret string

	// Menu source: "db" or "static"
	MenuSource string

	// Deprecated: single shared admin password, kept only until every
	// operator has a database account.
	AdminPassword string

	JWTSecret string
}

// Load reads settings from the environment, falling back to the defaults
// the restaurant currently runs with.
func Load() Settings {
	return Settings{
		Currency:             getEnv("CURRENCY", "GBP"),
		OpeningTime:          getEnv("OPENING_TIME", "17:00"),
		ClosingTime:          getEnv("CLOSING_TIME", "23:30"),
		MinPrepMinutes:       getEnvInt("MIN_PREP_MINUTES", 30),
		SlotMinutes:          getEnvInt("SLOT_MINUTES", 15),
		DeliveryFee:          getEnvInt64("DELIVERY_FEE", 299),
		FreeDeliveryOver:     getEnvInt64("FREE_DELIVERY_OVER", 2500),
		DeliveryOutwardCodes: getEnvList("DELIVERY_OUTWARD_CODES", []string{"TW18", "TW19", "TW15"}),
		DeliveryETA:          getEnv("DELIVERY_ETA", "45-60 minutes"),
		PickupETA:            getEnv("PICKUP_ETA", "20-30 minutes"),
		TipPercents:          getEnvFloats("TIP_PERCENTS", []float64{0, 5, 10, 12.5}),
		GatewayName:          getEnv("GATEWAY_NAME", "cardlink"),
		GatewayBaseURL:       getEnv("GATEWAY_BASE_URL", "https://api.sandbox.cardlink.io"),
		GatewaySecretKey:     getEnv("GATEWAY_SECRET_KEY", ""),
		GatewayWebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),
		MenuSource:           getEnv("MENU_SOURCE", "db"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
	}
}

// InitDB opens the database connection. DB_DRIVER selects mysql (default)
// or sqlite; DB_DSN carries the driver-specific DSN.
func InitDB() (*gorm.DB, error) {
	driver := getEnv("DB_DRIVER", "mysql")
	dsn := os.Getenv("DB_DSN")

	switch driver {
	case "mysql":
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				getEnv("DB_USER", "root"),
				os.Getenv("DB_PASSWORD"),
				getEnv("DB_HOST", "127.0.0.1"),
				getEnv("DB_PORT", "3306"),
				getEnv("DB_NAME", "ordering"),
			)
		}
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	case "sqlite":
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvFloats(key string, fallback []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
