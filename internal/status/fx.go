package status

import (
	"github.com/costmgmt/koku/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewBrokerClient connects to the task-queue broker used by the ingestion
// workers. The status reporter only read-checks it.
func NewBrokerClient(cfg config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.BrokerAddr,
		Password: cfg.BrokerPassword,
		DB:       cfg.BrokerDB,
	})
}

var Module = fx.Module("status",
	fx.Provide(
		NewBrokerClient,
		NewReporter,
	),
)
