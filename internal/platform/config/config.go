// Package config loads the ledger core's own settings: the Postgres
// DSN, pool sizing, and the posting policy's operator-configured caps.
package config

import (
	"log"
	"math/big"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	DBPoolMaxConns   int32
	DBAcquireTimeout time.Duration

	MaxLinesNormal         int
	MaxLinesBatch          int
	MaxAmountMinorPerAsset *big.Int // nil disables the cap
}

// Load reads configuration from the environment (and a local .env
// file, if present), falling back to hardcoded defaults. A warning is
// logged for an unset PGSQL_URL, an unparsable DB_ACQUIRE_TIMEOUT and
// an unparsable MAX_AMOUNT_MINOR_PER_ASSET; the other defaults apply
// silently.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("DB_POOL_MAX_CONNS", 10)
	v.SetDefault("DB_ACQUIRE_TIMEOUT", "5s")
	v.SetDefault("MAX_LINES_NORMAL", 50)
	v.SetDefault("MAX_LINES_BATCH", 500)
	v.SetDefault("MAX_AMOUNT_MINOR_PER_ASSET", "")

	dbURL := v.GetString("PGSQL_URL")
	if dbURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	acquireTimeout, err := time.ParseDuration(v.GetString("DB_ACQUIRE_TIMEOUT"))
	if err != nil {
		acquireTimeout = 5 * time.Second
		log.Printf("Warning: invalid DB_ACQUIRE_TIMEOUT, defaulting to %s\n", acquireTimeout)
	}

	var amountCap *big.Int
	if raw := v.GetString("MAX_AMOUNT_MINOR_PER_ASSET"); raw != "" {
		parsed, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			log.Printf("Warning: invalid MAX_AMOUNT_MINOR_PER_ASSET %q, disabling amount cap\n", raw)
		} else {
			amountCap = parsed
		}
	}

	return &Config{
		DatabaseURL:            dbURL,
		DBPoolMaxConns:         int32(v.GetInt("DB_POOL_MAX_CONNS")),
		DBAcquireTimeout:       acquireTimeout,
		MaxLinesNormal:         v.GetInt("MAX_LINES_NORMAL"),
		MaxLinesBatch:          v.GetInt("MAX_LINES_BATCH"),
		MaxAmountMinorPerAsset: amountCap,
	}, nil
}
