package status

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/costmgmt/koku/internal/clock"
	"github.com/costmgmt/koku/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestReporter(t *testing.T, cfg config.Config) (*Reporter, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:status_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	// A broker nobody listens on; connection attempts fail fast.
	broker := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = broker.Close() })

	clk := clock.NewFakeClock(time.Date(2019, 2, 15, 10, 30, 0, 0, time.UTC))
	return NewReporter(db, broker, clk, cfg, zap.NewNop()), clk
}

func TestStatus_DegradedDependenciesStillReport(t *testing.T) {
	reporter, clk := newTestReporter(t, config.Config{Debug: true, Commit: "deadbeef"})

	snapshot := reporter.Status(context.Background())

	// Both backing services are down; the snapshot carries inline error tags
	// instead of failing.
	assert.Equal(t, map[string]any{"Error": brokerConnectionError}, snapshot.CeleryStatus)

	dbStatus, ok := snapshot.DatabaseStatus.(map[string]string)
	require.True(t, ok)
	assert.NotEmpty(t, dbStatus["Error"])

	// The rest of the snapshot is fully populated.
	assert.Equal(t, config.APIVersion, snapshot.APIVersion)
	assert.Equal(t, "deadbeef", snapshot.Commit)
	assert.Equal(t, clk.Now(), snapshot.CurrentDatetime)
	assert.True(t, snapshot.Debug)
	assert.Equal(t, runtime.Version(), snapshot.RuntimeVersion)
	assert.Equal(t, runtime.GOOS, snapshot.PlatformInfo.System)
	assert.Equal(t, runtime.GOARCH, snapshot.PlatformInfo.Machine)
}

func TestCommit_PrefersConfiguredValue(t *testing.T) {
	reporter, _ := newTestReporter(t, config.Config{Commit: "abc1234"})
	assert.Equal(t, "abc1234", reporter.commit(context.Background()))
}

func TestCommit_FallsBackToBuildEnv(t *testing.T) {
	reporter, _ := newTestReporter(t, config.Config{})
	t.Setenv("OPENSHIFT_BUILD_COMMIT", "build-env-sha")
	assert.Equal(t, "build-env-sha", reporter.commit(context.Background()))
}

func TestDatabaseStatus_SurfacesQueryError(t *testing.T) {
	// sqlite has no pg_stat_database; the check degrades to an error tag.
	reporter, _ := newTestReporter(t, config.Config{})
	status := reporter.databaseStatus(context.Background())

	tagged, ok := status.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, tagged["Error"], "pg_stat_database")
}

func TestQueueStatus_BrokerDownIsTerminal(t *testing.T) {
	reporter, _ := newTestReporter(t, config.Config{})
	stats := reporter.queueStatus(context.Background())
	assert.Equal(t, map[string]any{"Error": brokerConnectionError}, stats)
}

type discoveryResult struct {
	channels []string
	err      error
}

// stubBroker answers pings and scripts worker-discovery responses so the
// retry path is observable.
type stubBroker struct {
	redis.UniversalClient
	discoveries []discoveryResult
	calls       int
}

func (s *stubBroker) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (s *stubBroker) PubSubChannels(ctx context.Context, pattern string) *redis.StringSliceCmd {
	result := s.discoveries[min(s.calls, len(s.discoveries)-1)]
	s.calls++
	return redis.NewStringSliceResult(result.channels, result.err)
}

func newStubReporter(broker *stubBroker) *Reporter {
	clk := clock.NewFakeClock(time.Date(2019, 2, 15, 10, 30, 0, 0, time.UTC))
	return NewReporter(nil, broker, clk, config.Config{}, zap.NewNop())
}

func TestQueueStatus_DiscoversWorkers(t *testing.T) {
	broker := &stubBroker{discoveries: []discoveryResult{
		{channels: []string{"worker1@host.pidbox", "worker2@host.pidbox"}},
	}}

	stats := newStubReporter(broker).queueStatus(context.Background())
	assert.Equal(t, 1, broker.calls)
	assert.Equal(t, map[string]any{
		"worker1@host": map[string]string{"status": "OK"},
		"worker2@host": map[string]string{"status": "OK"},
	}, stats)
}

func TestQueueStatus_TransientDiscoveryErrorRetriedOnce(t *testing.T) {
	broker := &stubBroker{discoveries: []discoveryResult{
		{err: errors.New("connection reset by peer")},
		{channels: []string{"worker1@host.pidbox"}},
	}}

	stats := newStubReporter(broker).queueStatus(context.Background())
	assert.Equal(t, 2, broker.calls)
	assert.Equal(t, map[string]any{
		"worker1@host": map[string]string{"status": "OK"},
	}, stats)
}

func TestQueueStatus_NoWorkersSentinelNotRetried(t *testing.T) {
	broker := &stubBroker{discoveries: []discoveryResult{
		{channels: nil},
	}}

	stats := newStubReporter(broker).queueStatus(context.Background())
	assert.Equal(t, 1, broker.calls)
	assert.Equal(t, map[string]any{"Error": workersNotFoundError}, stats)
}

func TestQueueStatus_PersistentDiscoveryErrorReported(t *testing.T) {
	broker := &stubBroker{discoveries: []discoveryResult{
		{err: errors.New("connection reset by peer")},
	}}

	stats := newStubReporter(broker).queueStatus(context.Background())
	assert.Equal(t, 2, broker.calls)
	assert.Equal(t, map[string]any{"Error": "connection reset by peer"}, stats)
}
