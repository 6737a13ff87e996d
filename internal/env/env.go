package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load variables from a .env file into the process environment. Missing file
// is not fatal, the process may already carry everything it needs.
func LoadEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("No %s file loaded: %v", path, err)
	}
}

func GetString(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	return val
}

func GetInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	valAsInt, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return valAsInt
}

func GetBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	valAsBool, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return valAsBool
}
