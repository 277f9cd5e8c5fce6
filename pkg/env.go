package pkg

import "os"

// Getenv returns the value of key, or defaultValue if key is not set.
// A key that is set to an empty value returns the empty value.
func Getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
