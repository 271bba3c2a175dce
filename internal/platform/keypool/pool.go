// Package keypool spreads outbound provider calls over interchangeable
// credentials, each with its own daily request budget.
package keypool

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/betstats/internal/platform/logging"
)

var (
	// ErrProvidersExhausted is terminal: every credential in the pool is over
	// quota or failed during this call.
	ErrProvidersExhausted = crerr.New("all provider credentials exhausted")
	// ErrQuotaExceeded is returned by callers when the upstream reports the
	// credential's budget as spent, so the pool can mark it for the day.
	ErrQuotaExceeded = crerr.New("provider quota exceeded")
)

// Credential is one API key with an independent daily quota.
// DailyLimit <= 0 means the upstream publishes no limit.
type Credential struct {
	ID         string
	Key        string
	DailyLimit int
}

// QuotaTracker counts requests per (provider id, day). Counters must expire
// at the end of the day they were created for.
type QuotaTracker interface {
	Used(ctx context.Context, providerID string, day time.Time) (int, error)
	Increment(ctx context.Context, providerID string, day time.Time) (int, error)
	Exhaust(ctx context.Context, providerID string, day time.Time, limit int) error
}

type CredentialStatus struct {
	ID         string
	Used       int
	DailyLimit int
	Remaining  int
}

type Pool struct {
	name        string
	credentials []Credential
	quota       QuotaTracker
	logger      *logging.Logger
	now         func() time.Time
	location    *time.Location
}

type Option func(*Pool)

func WithLogger(logger *logging.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the timezone whose midnight resets the quotas.
func WithLocation(loc *time.Location) Option {
	return func(p *Pool) {
		if loc != nil {
			p.location = loc
		}
	}
}

// New builds a pool; credentials without a key are dropped.
func New(name string, credentials []Credential, quota QuotaTracker, opts ...Option) *Pool {
	usable := make([]Credential, 0, len(credentials))
	for _, cred := range credentials {
		if strings.TrimSpace(cred.Key) == "" || strings.TrimSpace(cred.ID) == "" {
			continue
		}
		usable = append(usable, cred)
	}

	p := &Pool{
		name:        name,
		credentials: usable,
		quota:       quota,
		logger:      logging.Default(),
		now:         time.Now,
		location:    time.UTC,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("pool", name)
	return p
}

func (p *Pool) Name() string {
	return p.name
}

// Size is the number of usable credentials.
func (p *Pool) Size() int {
	return len(p.credentials)
}

// Do runs fn with the credential that has the most remaining quota today.
// A credential that fails, or reports ErrQuotaExceeded, is excluded for the
// rest of the call and the next best one is tried. When none is left the
// call fails with ErrProvidersExhausted.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context, cred Credential) error) error {
	excluded := make(map[string]struct{}, len(p.credentials))
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		day := p.today()
		cred, ok, err := p.pick(ctx, day, excluded)
		if err != nil {
			return err
		}
		if !ok {
			exhausted := crerr.Wrapf(ErrProvidersExhausted, "%s: tried %d of %d credential(s)", p.name, len(excluded), len(p.credentials))
			if lastErr != nil {
				exhausted = crerr.WithSecondaryError(exhausted, lastErr)
			}
			return exhausted
		}

		if _, err := p.quota.Increment(ctx, cred.ID, day); err != nil {
			return crerr.Wrapf(err, "increment quota for %s", cred.ID)
		}

		callErr := fn(ctx, cred)
		if callErr == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return callErr
		}

		lastErr = callErr
		excluded[cred.ID] = struct{}{}
		if crerr.Is(callErr, ErrQuotaExceeded) {
			if err := p.quota.Exhaust(ctx, cred.ID, day, cred.DailyLimit); err != nil {
				p.logger.WarnContext(ctx, "mark credential exhausted failed", "credential", cred.ID, "error", err)
			}
		}
		p.logger.WarnContext(ctx, "provider credential excluded", "credential", cred.ID, "error", callErr)
	}
}

// Status reports today's usage per credential in declaration order.
func (p *Pool) Status(ctx context.Context) ([]CredentialStatus, error) {
	day := p.today()
	out := make([]CredentialStatus, 0, len(p.credentials))
	for _, cred := range p.credentials {
		used, err := p.quota.Used(ctx, cred.ID, day)
		if err != nil {
			return nil, crerr.Wrapf(err, "read quota for %s", cred.ID)
		}
		out = append(out, CredentialStatus{
			ID:         cred.ID,
			Used:       used,
			DailyLimit: cred.DailyLimit,
			Remaining:  remaining(cred, used),
		})
	}
	return out, nil
}

func (p *Pool) pick(ctx context.Context, day time.Time, excluded map[string]struct{}) (Credential, bool, error) {
	type candidate struct {
		cred      Credential
		remaining int
		order     int
	}

	candidates := make([]candidate, 0, len(p.credentials))
	for idx, cred := range p.credentials {
		if _, skip := excluded[cred.ID]; skip {
			continue
		}
		used, err := p.quota.Used(ctx, cred.ID, day)
		if err != nil {
			return Credential{}, false, crerr.Wrapf(err, "read quota for %s", cred.ID)
		}
		left := remaining(cred, used)
		if left <= 0 {
			continue
		}
		candidates = append(candidates, candidate{cred: cred, remaining: left, order: idx})
	}
	if len(candidates) == 0 {
		return Credential{}, false, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].remaining != candidates[j].remaining {
			return candidates[i].remaining > candidates[j].remaining
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].cred, true, nil
}

func (p *Pool) today() time.Time {
	now := p.now().In(p.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.location)
}

func remaining(cred Credential, used int) int {
	if cred.DailyLimit <= 0 {
		return math.MaxInt32
	}
	return cred.DailyLimit - used
}

// QuotaKey is the counter key shared by every tracker backend.
func QuotaKey(providerID string, day time.Time) string {
	return "quota:" + providerID + ":" + day.Format("2006-01-02")
}

// NextMidnight is when a counter created on day expires.
func NextMidnight(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}
