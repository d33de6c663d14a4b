// Package status aggregates a read-only diagnostic snapshot of the service:
// queue reachability, database connectivity, build metadata. Every sub-check
// is isolated; Status never fails as a whole.
package status

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/costmgmt/koku/internal/clock"
	"github.com/costmgmt/koku/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	brokerConnectionError = "Unable to establish connection with broker."
	workersNotFoundError  = "No running workers were found."

	queueCheckTimeout = time.Second
)

// Snapshot is the status payload. The key names are a monitoring contract
// carried over from earlier deployments; python_version holds the Go runtime
// version.
type Snapshot struct {
	APIVersion      int               `json:"api_version"`
	CeleryStatus    map[string]any    `json:"celery_status"`
	Commit          string            `json:"commit"`
	CurrentDatetime time.Time         `json:"current_datetime"`
	DatabaseStatus  any               `json:"database_status"`
	Debug           bool              `json:"debug"`
	Modules         map[string]string `json:"modules"`
	PlatformInfo    PlatformInfo      `json:"platform_info"`
	RuntimeVersion  string            `json:"python_version"`
}

type PlatformInfo struct {
	System  string `json:"system"`
	Node    string `json:"node"`
	Machine string `json:"machine"`
	Version string `json:"version"`
}

// DatabaseConnections is one row of the per-database connection breakdown.
type DatabaseConnections struct {
	Database            string `json:"database"`
	DatabaseConnections int    `json:"database_connections"`
}

type Reporter struct {
	db     *gorm.DB
	broker redis.UniversalClient
	clock  clock.Clock
	cfg    config.Config
	log    *zap.Logger
}

func NewReporter(
	conn *gorm.DB,
	broker redis.UniversalClient,
	clk clock.Clock,
	cfg config.Config,
	log *zap.Logger,
) *Reporter {
	return &Reporter{
		db:     conn,
		broker: broker,
		clock:  clk,
		cfg:    cfg,
		log:    log.Named("status"),
	}
}

// Status assembles the full snapshot. Sub-check failures become inline error
// tags; the call itself never fails.
func (r *Reporter) Status(ctx context.Context) Snapshot {
	return Snapshot{
		APIVersion:      config.APIVersion,
		CeleryStatus:    r.queueStatus(ctx),
		Commit:          r.commit(ctx),
		CurrentDatetime: r.clock.Now(),
		DatabaseStatus:  r.databaseStatus(ctx),
		Debug:           r.cfg.Debug,
		Modules:         moduleVersions(),
		PlatformInfo:    platformInfo(),
		RuntimeVersion:  runtime.Version(),
	}
}

// queueStatus checks the task broker and discovers running workers. Worker
// discovery is retried once when it fails with anything other than the
// no-workers sentinel; a broker connection failure is terminal and is not
// retried.
func (r *Reporter) queueStatus(parentCtx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(parentCtx, queueCheckTimeout)
	defer cancel()

	if err := r.broker.Ping(ctx).Err(); err != nil {
		r.log.Warn("broker unreachable", zap.Error(err))
		return map[string]any{"Error": brokerConnectionError}
	}

	stats := r.inspectWorkers(ctx)
	if msg, ok := stats["Error"].(string); ok && msg != workersNotFoundError {
		stats = r.inspectWorkers(ctx)
	}
	return stats
}

// inspectWorkers lists worker control mailboxes on the broker. Each running
// worker holds a pidbox pub/sub channel open.
func (r *Reporter) inspectWorkers(ctx context.Context) map[string]any {
	channels, err := r.broker.PubSubChannels(ctx, "*.pidbox").Result()
	if err != nil {
		return map[string]any{"Error": err.Error()}
	}
	if len(channels) == 0 {
		return map[string]any{"Error": workersNotFoundError}
	}

	stats := make(map[string]any, len(channels))
	for _, channel := range channels {
		worker := strings.TrimSuffix(channel, ".pidbox")
		stats[worker] = map[string]string{"status": "OK"}
	}
	return stats
}

func (r *Reporter) databaseStatus(ctx context.Context) any {
	var rows []DatabaseConnections
	err := r.db.WithContext(ctx).Raw(
		`SELECT datname AS database,
		        numbackends AS database_connections
		 FROM pg_stat_database`,
	).Scan(&rows).Error
	if err != nil {
		r.log.Warn("unable to connect to DB", zap.Error(err))
		return map[string]string{"Error": err.Error()}
	}
	return rows
}

func (r *Reporter) commit(ctx context.Context) string {
	if r.cfg.Commit != "" {
		return r.cfg.Commit
	}
	if build := os.Getenv("OPENSHIFT_BUILD_COMMIT"); build != "" {
		return build
	}

	out, err := exec.CommandContext(ctx, "git", "describe", "--always").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func moduleVersions() map[string]string {
	modules := map[string]string{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return modules
	}
	for _, dep := range info.Deps {
		modules[dep.Path] = dep.Version
	}
	return modules
}

func platformInfo() PlatformInfo {
	hostname, _ := os.Hostname()
	return PlatformInfo{
		System:  runtime.GOOS,
		Node:    hostname,
		Machine: runtime.GOARCH,
		Version: runtime.Version(),
	}
}
