package support

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/caarlos0/env/v11"
)

func AWSConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx)
}

// Config carries the environment settings of the pipeline's collaborators.
type Config struct {
	PostgresDSN  string `env:"POSTGRES_DSN"`
	RecordsTable string `env:"DYNAMODB_RECORDS_TABLE_NAME"`
	NatsURL      string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	MongoURI     string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB      string `env:"MONGO_DATABASE" envDefault:"shopstream"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
