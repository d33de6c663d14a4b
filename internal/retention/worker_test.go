package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/costmgmt/koku/internal/clock"
	providerdomain "github.com/costmgmt/koku/internal/provider/domain"
	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProviders struct {
	providers []providerdomain.Provider
	err       error
}

func (s *stubProviders) FindByID(ctx context.Context, id int64) (*providerdomain.Provider, error) {
	return nil, nil
}

func (s *stubProviders) List(ctx context.Context) ([]providerdomain.Provider, error) {
	return s.providers, s.err
}

func (s *stubProviders) Create(ctx context.Context, p *providerdomain.Provider) error {
	return nil
}

type purgeCall struct {
	schema tenant.Schema
	opts   reportdomain.PurgeOptions
}

type stubCleaner struct {
	calls  []purgeCall
	failOn tenant.Schema
}

func (s *stubCleaner) PurgeExpiredReportData(ctx context.Context, schema tenant.Schema, opts reportdomain.PurgeOptions) ([]reportdomain.RemovalRecord, error) {
	s.calls = append(s.calls, purgeCall{schema: schema, opts: opts})
	if schema == s.failOn {
		return nil, errors.New("purge failed")
	}
	return []reportdomain.RemovalRecord{{AccountPayerID: "1", BillingPeriodStart: "2019-01-01"}}, nil
}

func newTestWorker(providers *stubProviders, cleaner *stubCleaner, now time.Time) *Worker {
	return NewWorker(Params{
		Log:       zap.NewNop(),
		Providers: providers,
		Cleaner:   cleaner,
		Clock:     clock.NewFakeClock(now),
	})
}

func TestExpiredDate(t *testing.T) {
	tests := []struct {
		name   string
		months int
		now    time.Time
		want   time.Time
	}{
		{
			name:   "mid month",
			months: 3,
			now:    time.Date(2019, 4, 15, 10, 30, 0, 0, time.UTC),
			want:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "year rollover",
			months: 3,
			now:    time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2018, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "single month window",
			months: 1,
			now:    time.Date(2019, 1, 31, 23, 59, 59, 0, time.UTC),
			want:   time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorker(Params{
				Log:       zap.NewNop(),
				Providers: &stubProviders{},
				Cleaner:   &stubCleaner{},
				Clock:     clock.NewFakeClock(tt.now),
				Config:    Config{RetentionMonths: tt.months},
			})
			assert.Equal(t, tt.want, w.ExpiredDate())
		})
	}
}

func TestRunOnce_GroupsProvidersBySchema(t *testing.T) {
	providers := &stubProviders{providers: []providerdomain.Provider{
		{ID: 1, TenantSchema: "acct10001"},
		{ID: 2, TenantSchema: "acct10001"},
		{ID: 3, TenantSchema: "acct10002"},
		{ID: 4, TenantSchema: "Not A Schema"},
	}}
	cleaner := &stubCleaner{}
	now := time.Date(2019, 4, 15, 0, 0, 0, 0, time.UTC)
	w := newTestWorker(providers, cleaner, now)

	require.NoError(t, w.RunOnce(context.Background()))

	// One purge per distinct schema; the unparsable schema is skipped.
	require.Len(t, cleaner.calls, 2)
	assert.Equal(t, tenant.Schema("acct10001"), cleaner.calls[0].schema)
	assert.Equal(t, tenant.Schema("acct10002"), cleaner.calls[1].schema)

	want := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, call := range cleaner.calls {
		require.NotNil(t, call.opts.ExpiredDate)
		assert.Equal(t, want, *call.opts.ExpiredDate)
		assert.Nil(t, call.opts.ProviderID)
		assert.False(t, call.opts.Simulate)
	}
}

func TestRunOnce_ContinuesPastFailingTenant(t *testing.T) {
	providers := &stubProviders{providers: []providerdomain.Provider{
		{ID: 1, TenantSchema: "acct10001"},
		{ID: 2, TenantSchema: "acct10002"},
	}}
	cleaner := &stubCleaner{failOn: "acct10001"}
	w := newTestWorker(providers, cleaner, time.Date(2019, 4, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, w.RunOnce(context.Background()))
	assert.Len(t, cleaner.calls, 2)
}

func TestRunOnce_ProviderListFailure(t *testing.T) {
	providers := &stubProviders{err: errors.New("connection refused")}
	cleaner := &stubCleaner{}
	w := newTestWorker(providers, cleaner, time.Date(2019, 4, 15, 0, 0, 0, 0, time.UTC))

	require.Error(t, w.RunOnce(context.Background()))
	assert.Empty(t, cleaner.calls)
}

func TestConfigDefaults(t *testing.T) {
	defaults := DefaultConfig()
	cfg := Config{}.withDefaults()
	assert.Equal(t, defaults, cfg)

	custom := Config{RetentionMonths: 6}.withDefaults()
	assert.Equal(t, 6, custom.RetentionMonths)
	assert.Equal(t, defaults.PollInterval, custom.PollInterval)
}
