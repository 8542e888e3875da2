package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgw/config"
)

// testClock is a settable clock for quota and router tests
type testClock struct {
	mu sync.Mutex
	at time.Time
}

func newTestClock() *testClock { return &testClock{at: time.Unix(1700000000, 0)} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(d)
	c.mu.Unlock()
}

func frozenQuota(cfg config.QuotaConfig) *QuotaStore {
	q := NewQuotaStore(cfg)
	q.now = newTestClock().Now
	return q
}

func admit(q *QuotaStore, org string, records, bytes int) error {
	_, err := q.Admit(org, records, bytes)
	return err
}

func TestQuotaRejectsWholeBatch(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{RecordsPerSecond: 1, RecordBurst: 10}})

	require.NoError(t, admit(q, "acme", 6, 0))
	err := admit(q, "acme", 5, 0)
	var qe *QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "acme", qe.OrgID)

	// the refused batch took nothing; the remaining 4 tokens are still there
	assert.NoError(t, admit(q, "acme", 4, 0))
	assert.Error(t, admit(q, "acme", 1, 0))
}

func TestQuotaBatchLargerThanBurst(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{RecordsPerSecond: 100, RecordBurst: 10}})
	err := admit(q, "acme", 11, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds burst of 10")
}

func TestQuotaByteLimitRollsBackRecords(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{
		RecordsPerSecond: 1, RecordBurst: 10,
		BytesPerSecond: 1, ByteBurst: 100,
	}})

	require.Error(t, admit(q, "acme", 5, 200))
	// records charge was returned when bytes failed
	assert.NoError(t, admit(q, "acme", 10, 100))
}

func TestQuotaIsPerOrganization(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{
		Default:   config.QuotaLimits{RecordsPerSecond: 1, RecordBurst: 5},
		Overrides: map[string]config.QuotaLimits{"big": {RecordsPerSecond: 1, RecordBurst: 50}},
	})
	require.NoError(t, admit(q, "a", 5, 0))
	assert.Error(t, admit(q, "a", 1, 0))
	assert.NoError(t, admit(q, "b", 5, 0))
	assert.NoError(t, admit(q, "big", 50, 0))
}

func TestQuotaUnlimitedByDefault(t *testing.T) {
	q := NewQuotaStore(config.QuotaConfig{})
	for i := 0; i < 100; i++ {
		require.NoError(t, admit(q, "acme", 1_000_000, 1<<30))
	}
}

func TestQuotaConcurrentAdmission(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{RecordsPerSecond: 1, RecordBurst: 100}})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if admit(q, "acme", 3, 0) == nil {
				mu.Lock()
				admitted += 3
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 99, admitted)
}

func TestQuotaReleaseReturnsCharge(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{
		RecordsPerSecond: 0.001, RecordBurst: 2,
		BytesPerSecond: 1, ByteBurst: 100,
	}})

	charge, err := q.Admit("acme", 2, 60)
	require.NoError(t, err)
	require.Error(t, admit(q, "acme", 1, 1))

	charge.Release()
	charge.Release()
	// both buckets are full again, and a double release did not overfill them
	require.NoError(t, admit(q, "acme", 2, 100))
	assert.Error(t, admit(q, "acme", 1, 1))
}

func TestQuotaReleaseAfterClockMoved(t *testing.T) {
	clock := newTestClock()
	q := NewQuotaStore(config.QuotaConfig{Default: config.QuotaLimits{RecordsPerSecond: 0.001, RecordBurst: 2}})
	q.now = clock.Now

	charge, err := q.Admit("acme", 2, 0)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)
	charge.Release()

	assert.NoError(t, admit(q, "acme", 2, 0))
}

func TestQuotaRateErrorKeepsFractionalLimit(t *testing.T) {
	q := frozenQuota(config.QuotaConfig{Default: config.QuotaLimits{RecordsPerSecond: 0.5, RecordBurst: 1}})
	require.NoError(t, admit(q, "acme", 1, 0))
	err := admit(q, "acme", 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records rate limit of 0.5/s reached")
}

func TestQuotaEvictsIdleOrganizations(t *testing.T) {
	clock := newTestClock()
	q := NewQuotaStore(config.QuotaConfig{
		Default:   config.QuotaLimits{RecordsPerSecond: 10, RecordBurst: 10},
		Overrides: map[string]config.QuotaLimits{"slow": {RecordsPerSecond: 0.0001, RecordBurst: 5}},
	})
	q.now = clock.Now

	for _, org := range []string{"a", "b", "c", "slow"} {
		require.NoError(t, admit(q, org, 5, 0))
	}
	require.Len(t, q.orgs, 4)

	clock.Advance(quotaIdleTTL)
	require.NoError(t, admit(q, "d", 1, 0))

	// refilled organizations are gone; "slow" still owes tokens and stays
	assert.Len(t, q.orgs, 2)
	assert.Contains(t, q.orgs, "slow")
	assert.Contains(t, q.orgs, "d")
	assert.Error(t, admit(q, "slow", 1, 0))
}
