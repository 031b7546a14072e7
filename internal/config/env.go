package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ReadEnvFile reads a dotenv file without touching the process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vars, nil
}

// EnvLookup resolves environment references from overlay first and the
// process environment second.
func EnvLookup(overlay map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if v, ok := overlay[name]; ok {
			return v, true
		}
		return os.LookupEnv(name)
	}
}
