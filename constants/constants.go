package constants

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultPPQ is the symbolic resolution in pulses per quarter note.
const DefaultPPQ = 720

const (
	PresetChordal = "chordal-texture"
	PresetMelodic = "melodic-texture"
)

// LoadEnv reads a .env file if there is one. A missing file is not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

func GetPPQ() int {
	if v, err := strconv.Atoi(os.Getenv("PERFDEX_PPQ")); err == nil && v > 0 {
		return v
	}
	return DefaultPPQ
}

func GetPreset() string {
	return getEnv("PERFDEX_PRESET", PresetChordal)
}

func GetLogLevel() string {
	return getEnv("PERFDEX_LOG_LEVEL", "info")
}

func GetPort() string {
	return getEnv("PERFDEX_PORT", "8080")
}

func GetAlignmentTable() string {
	return getEnv("PERFDEX_TABLE", "perfdex-alignments")
}

// GetDynamoEndpoint is empty unless a local DynamoDB is configured.
func GetDynamoEndpoint() string {
	return getEnv("PERFDEX_DYNAMO_ENDPOINT", "")
}

func GetRegion() string {
	return getEnv("PERFDEX_REGION", "us-east-1")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
