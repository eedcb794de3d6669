package config

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Supported store backends.
const (
	BackendMongo    = "mongo"
	BackendFirebase = "firebase"
)

// Config holds the environment-provided settings. Exactly one store backend
// is active per process, selected by StoreBackend.
type Config struct {
	Port         string `validate:"required"`
	Env          string
	StoreBackend string `validate:"required,oneof=mongo firebase"`

	MongoURI   string
	MongoDB    string
	Collection string `validate:"required"`

	FirebaseCredentialsPath string
	FirebaseDatabaseURL     string

	// IDRoot is the external base URL every @id is built from.
	IDRoot string `validate:"required,url"`
}

// Load reads configuration from the environment (and a .env file if one is
// present) and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		Env:                     getEnv("ENV", "development"),
		StoreBackend:            getEnv("STORE_BACKEND", BackendMongo),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDB:                 getEnv("MONGO_DB", "inbox"),
		Collection:              getEnv("MESSAGES_COLLECTION", "messages"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseDatabaseURL:     getEnv("FIREBASE_DATABASE_URL", ""),
		IDRoot:                  getEnv("ID_ROOT", "http://localhost:3000"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.StoreBackend {
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the mongo backend")
		}
	case BackendFirebase:
		if cfg.FirebaseDatabaseURL == "" {
			return nil, fmt.Errorf("FIREBASE_DATABASE_URL is required for the firebase backend")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
