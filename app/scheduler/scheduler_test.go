package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	snapshot *businessflow.LeadMetricsSnapshot
	err      error
	calls    int
}

func (s *stubRefresher) RefreshLeadMetrics(ctx context.Context) (*businessflow.LeadMetricsSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func TestSetupJobs(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"default", "", false},
		{"descriptor", "@every 1m", false},
		{"five fields", "*/10 * * * *", false},
		{"garbage", "every now and then", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&stubRefresher{}, nil, logger.Nop())
			err := s.SetupJobs(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, s.cron.Entries(), 1)
		})
	}
}

func TestRunLeadMetricsWarnsAboutStaleLeads(t *testing.T) {
	var buf bytes.Buffer
	refresher := &stubRefresher{snapshot: &businessflow.LeadMetricsSnapshot{
		ByStatus:    map[models.LeadStatus]int64{models.LeadStatusNew: 3},
		StaleNew:    2,
		StaleCutoff: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		CollectedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}}
	s := New(refresher, nil, logger.NewWithWriter(&buf, "info", "json"))

	snapshot, err := s.RunLeadMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.StaleNew)
	assert.Equal(t, 1, refresher.calls)
	assert.Contains(t, buf.String(), "new leads waiting for a call")
	assert.Contains(t, buf.String(), `"count":2`)
}

func TestRunLeadMetricsQuietWithoutStaleLeads(t *testing.T) {
	var buf bytes.Buffer
	refresher := &stubRefresher{snapshot: &businessflow.LeadMetricsSnapshot{
		ByStatus: map[models.LeadStatus]int64{},
	}}
	s := New(refresher, nil, logger.NewWithWriter(&buf, "info", "json"))

	_, err := s.RunLeadMetrics(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "waiting")
}

func TestRunLeadMetricsReportsFailure(t *testing.T) {
	var buf bytes.Buffer
	refresher := &stubRefresher{err: errors.New("database is down")}
	s := New(refresher, nil, logger.NewWithWriter(&buf, "info", "json"))

	snapshot, err := s.RunLeadMetrics(context.Background())
	assert.Error(t, err)
	assert.Nil(t, snapshot)
	assert.Contains(t, buf.String(), "lead metrics job failed")
}

func TestStartStop(t *testing.T) {
	s := New(&stubRefresher{snapshot: &businessflow.LeadMetricsSnapshot{}}, time.UTC, logger.Nop())
	require.NoError(t, s.SetupJobs("@every 1h"))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
