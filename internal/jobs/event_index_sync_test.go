package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"maatram_portal_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReindexer struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeReindexer) ReindexAll(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakeEnsurer struct {
	calls int
	err   error
}

func (f *fakeEnsurer) EnsureIndex(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestRunOnce(t *testing.T) {
	r := &fakeReindexer{n: 3}
	e := &fakeEnsurer{}
	job := NewEventIndexSyncJob(r, e, zap.NewNop(), &config.Config{})

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, e.calls)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRunOnce_EnsureFails(t *testing.T) {
	r := &fakeReindexer{}
	e := &fakeEnsurer{err: errors.New("cluster red")}
	job := NewEventIndexSyncJob(r, e, zap.NewNop(), &config.Config{})

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster red")
	assert.Equal(t, int32(0), r.calls.Load())
}

func TestSetupAndStart_SearchDisabled(t *testing.T) {
	job := NewEventIndexSyncJob(&fakeReindexer{}, nil, zap.NewNop(), &config.Config{EventIndexSyncSchedule: "@hourly"})
	require.NoError(t, job.SetupAndStart())
	assert.False(t, job.Started())
	job.Stop()
}

func TestSetupAndStart_InvalidSchedule(t *testing.T) {
	cfg := &config.Config{ElasticsearchURL: "http://localhost:9200", EventIndexSyncSchedule: "not a schedule"}
	job := NewEventIndexSyncJob(&fakeReindexer{}, nil, zap.NewNop(), cfg)
	assert.Error(t, job.SetupAndStart())
	assert.False(t, job.Started())
}

func TestSetupAndStart_Runs(t *testing.T) {
	r := &fakeReindexer{n: 1}
	cfg := &config.Config{ElasticsearchURL: "http://localhost:9200", EventIndexSyncSchedule: "@every 1s"}
	job := NewEventIndexSyncJob(r, nil, zap.NewNop(), cfg)

	require.NoError(t, job.SetupAndStart())
	defer job.Stop()
	assert.True(t, job.Started())
	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cl := NewCronLogger(zap.New(core))

	cl.Info("tick", "entry", 1, "dangling")
	cl.Error(errors.New("boom"), "panic recovered")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["entry"])
	assert.Equal(t, "MISSING_VALUE", fields["dangling"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
