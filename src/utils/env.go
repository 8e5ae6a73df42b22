package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DEV_ENV_FILENAME = ".env.development"
const PROD_ENV_FILENAME = ".env.production"

// InitEnvironmentVariables loads the .env file matching goEnv from dir. A
// missing file is not an error: keys may come from the real environment.
func InitEnvironmentVariables(dir string, goEnv string) error {
	envFile := filepath.Join(dir, DEV_ENV_FILENAME)
	if goEnv == "production" {
		envFile = filepath.Join(dir, PROD_ENV_FILENAME)
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		log.Debugf("InitEnvironmentVariables: %s not found, using process environment", envFile)
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("InitEnvironmentVariables: failed to load %s file: %w", envFile, err)
	}

	log.Debugf("InitEnvironmentVariables: loaded %s", envFile)

	return nil
}

func GetEnv(key string) (string, error) {
	value, found := os.LookupEnv(key)
	if !found {
		return "", fmt.Errorf("GetEnv: %s not set", key)
	}

	return value, nil
}

func GetEnvOrDefault(key string, fallback string) string {
	if value, err := GetEnv(key); err == nil && value != "" {
		return value
	}

	return fallback
}
