package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/fashion_store/pkg/config"
	pkgdb "github.com/Skotchmaster/fashion_store/pkg/db"
)

const (
	StockPolicyLine     = "line"
	StockPolicyReserved = "reserved"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DBDriver    string
	DatabaseURL string

	JWTSecret      []byte
	AccessTokenTTL time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CORSOrigins []string

	StockPolicy string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("notice: cannot load .env: %v", err)
	}

	driver := config.EnvDefault("DB_DRIVER", pkgdb.DriverSQLite)
	dsnDefault := ""
	if driver == pkgdb.DriverSQLite {
		dsnDefault = "instance/fashion_store.db"
	}

	return Config{
		ServiceName: config.EnvDefault("SERVICE_NAME", "fashion_store"),
		ServerPort:  config.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    config.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    driver,
		DatabaseURL: config.EnvDefault("DATABASE_URL", dsnDefault),

		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTL: config.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),

		KafkaBrokers: config.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    config.EnvDefault("ES_INDEX", "products"),

		CORSOrigins: config.CSV(config.EnvDefault("CORS_ORIGINS", "http://localhost:5173")),

		StockPolicy: config.EnvDefault("CART_STOCK_POLICY", StockPolicyLine),
	}
}

// MustLoad is Load plus the checks the server cannot start without.
func MustLoad() Config {
	cfg := Load()

	config.MustOneOf(cfg.DBDriver, "DB_DRIVER", pkgdb.DriverPostgres, pkgdb.DriverSQLite)
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustOneOf(cfg.StockPolicy, "CART_STOCK_POLICY", StockPolicyLine, StockPolicyReserved)

	return cfg
}
