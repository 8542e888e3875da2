package service

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ingestgw/config"
)

// quotaIdleTTL is how long an organization's limiters survive without
// traffic. Only limiters that have refilled to their burst are dropped, so
// recreating them later grants nothing extra.
const quotaIdleTTL = 10 * time.Minute

// QuotaError rejects a whole batch
type QuotaError struct {
	OrgID  string
	Reason string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded for organization %s: %s", e.OrgID, e.Reason)
}

// orgQuota pairs the record and byte limiters of one organization. A nil
// limiter means no limit.
type orgQuota struct {
	mu       sync.Mutex
	records  *rate.Limiter
	bytes    *rate.Limiter
	lastSeen time.Time // guarded by QuotaStore.mu
}

// idle reports whether both limiters are back at their burst at now
func (oq *orgQuota) idle(now time.Time) bool {
	for _, l := range []*rate.Limiter{oq.records, oq.bytes} {
		if l != nil && l.TokensAt(now) < float64(l.Burst()) {
			return false
		}
	}
	return true
}

// Charge is the quota taken by one admitted batch
type Charge struct {
	oq           *orgQuota
	at           time.Time
	reservations []*rate.Reservation
}

// Release returns the charge to the organization. It is for batches that
// were admitted but then rejected as a whole, so nothing of them was stored.
// Releasing twice, or releasing a nil Charge, is a no-op.
func (c *Charge) Release() {
	if c == nil || len(c.reservations) == 0 {
		return
	}
	c.oq.mu.Lock()
	defer c.oq.mu.Unlock()
	// cancelled at the reservation time: rate.Reservation ignores
	// cancellation once its time to act has passed
	for _, r := range c.reservations {
		r.CancelAt(c.at)
	}
	c.reservations = nil
}

// QuotaStore holds per-organization ingestion limits. It is the only shared
// mutable state on the admission path.
type QuotaStore struct {
	cfg       config.QuotaConfig
	now       func() time.Time
	mu        sync.Mutex
	orgs      map[string]*orgQuota
	lastSweep time.Time
}

func NewQuotaStore(cfg config.QuotaConfig) *QuotaStore {
	return &QuotaStore{
		cfg:  cfg,
		now:  time.Now,
		orgs: make(map[string]*orgQuota),
	}
}

// Admit charges records and bytes to org. Either both charges succeed or
// neither is taken. The returned Charge can give them back.
func (q *QuotaStore) Admit(org string, records, bytes int) (*Charge, error) {
	now := q.now()
	oq := q.get(org, now)

	oq.mu.Lock()
	defer oq.mu.Unlock()

	charge := &Charge{oq: oq, at: now}
	rollback := func() {
		for _, r := range charge.reservations {
			r.CancelAt(now)
		}
	}
	for _, c := range []struct {
		limiter *rate.Limiter
		n       int
		unit    string
	}{
		{oq.records, records, "records"},
		{oq.bytes, bytes, "bytes"},
	} {
		if c.limiter == nil || c.n == 0 {
			continue
		}
		r := c.limiter.ReserveN(now, c.n)
		if !r.OK() {
			rollback()
			return nil, &QuotaError{OrgID: org, Reason: fmt.Sprintf("batch of %d %s exceeds burst of %d", c.n, c.unit, c.limiter.Burst())}
		}
		if r.DelayFrom(now) > 0 {
			r.CancelAt(now)
			rollback()
			return nil, &QuotaError{OrgID: org, Reason: fmt.Sprintf("%s rate limit of %g/s reached", c.unit, float64(c.limiter.Limit()))}
		}
		charge.reservations = append(charge.reservations, r)
	}
	return charge, nil
}

func (q *QuotaStore) get(org string, now time.Time) *orgQuota {
	q.mu.Lock()
	defer q.mu.Unlock()

	if now.Sub(q.lastSweep) >= quotaIdleTTL {
		q.sweep(now)
	}
	oq, ok := q.orgs[org]
	if !ok {
		limits := q.cfg.LimitsFor(org)
		oq = &orgQuota{
			records: newLimiter(limits.RecordsPerSecond, limits.RecordBurst),
			bytes:   newLimiter(limits.BytesPerSecond, limits.ByteBurst),
		}
		q.orgs[org] = oq
	}
	oq.lastSeen = now
	return oq
}

// sweep drops organizations idle for quotaIdleTTL. Caller holds q.mu.
func (q *QuotaStore) sweep(now time.Time) {
	q.lastSweep = now
	for org, oq := range q.orgs {
		if now.Sub(oq.lastSeen) >= quotaIdleTTL && oq.idle(now) {
			delete(q.orgs, org)
		}
	}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
