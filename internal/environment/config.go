package environment

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	SandboxURL   string
	SandboxToken string

	SubmQueueURL     string
	ResponseQueueURL string

	NatsURL string

	TestsBucket string
	TestsPrefix string
}

// ReadEnvConfig loads configuration from the process environment, with a
// .env file as an optional local override.
func ReadEnvConfig() (*EnvConfig, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	result := &EnvConfig{
		SandboxURL:       os.Getenv("SANDBOX_URL"),
		SandboxToken:     os.Getenv("SANDBOX_TOKEN"),
		SubmQueueURL:     os.Getenv("SUBM_SQS_QUEUE_URL"),
		ResponseQueueURL: os.Getenv("RESPONSE_SQS_QUEUE_URL"),
		NatsURL:          os.Getenv("NATS_URL"),
		TestsBucket:      os.Getenv("TESTS_S3_BUCKET"),
		TestsPrefix:      os.Getenv("TESTS_S3_PREFIX"),
	}

	if result.SandboxURL == "" {
		return nil, fmt.Errorf("SANDBOX_URL is not set")
	}

	return result, nil
}
