// Package session implements the session engine: the per-clinician state
// that gates analysis behind the license quota, coordinates classifier
// calls, and accumulates results into an auditable batch.
//
// Quota lives here, not in the directory. The registry on disk is not
// guaranteed to be writable in deployment, so the session's local copy is
// the source of truth for "may this session analyze another photo".
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/domain/patient"
	"glycoanalyzer/internal/domain/triage"
	"glycoanalyzer/internal/shared/errors"
)

// State is the session lifecycle position. QuotaExhausted blocks analysis
// only; viewing the batch and logging out remain available.
type State string

const (
	StateAuthenticated  State = "authenticated"
	StateQuotaExhausted State = "quota_exhausted"
	StateClosed         State = "closed"
)

// ClassifierFunc submits one image to the external classifier and returns
// the parsed glycemic value in g/L. The call is the only blocking point of
// an analysis and must honor ctx cancellation.
type ClassifierFunc func(ctx context.Context, image []byte) (float64, error)

// Context owns one authenticated session: identity fields copied from the
// license record, the mutable quota counter, and the result batch. All
// mutation is serialized by an internal mutex; concurrent AnalyzePhoto calls
// on the same session cannot lose or double-count a decrement. Different
// sessions share nothing.
type Context struct {
	id           string
	email        string
	licenseeName string
	structure    string
	tierLabel    string
	createdAt    time.Time

	now func() time.Time

	mu             sync.Mutex
	remaining      int
	state          State
	batch          []Result
	currentPatient *patient.Record
}

// NewContext seeds a session from an authenticated license record. The
// record's remaining photo count is copied; the record itself is never
// mutated.
func NewContext(rec *license.Record) *Context {
	return &Context{
		id:           uuid.NewString(),
		email:        rec.Email,
		licenseeName: rec.LicenseeName,
		structure:    rec.Structure,
		tierLabel:    rec.TierLabel,
		createdAt:    time.Now(),
		now:          time.Now,
		remaining:    rec.RemainingPhotos,
		state:        StateAuthenticated,
	}
}

// WithClock overrides the session clock for tests.
func (c *Context) WithClock(now func() time.Time) *Context {
	c.now = now
	return c
}

func (c *Context) ID() string           { return c.id }
func (c *Context) Email() string        { return c.email }
func (c *Context) LicenseeName() string { return c.licenseeName }
func (c *Context) Structure() string    { return c.structure }
func (c *Context) TierLabel() string    { return c.tierLabel }
func (c *Context) CreatedAt() time.Time { return c.createdAt }

// Remaining returns the photos this session may still analyze.
func (c *Context) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCurrentPatient records the patient for subsequent uploads.
func (c *Context) SetCurrentPatient(p patient.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPatient = &p
}

// CurrentPatient returns the last registered patient, if any.
func (c *Context) CurrentPatient() (patient.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPatient == nil {
		return patient.Record{}, false
	}
	return *c.currentPatient, true
}

// AnalyzePhoto runs one photo through the classifier and, on success,
// appends a result and consumes one quota unit. The quota check happens
// before the classifier is invoked; a classifier failure consumes nothing
// and leaves the batch untouched.
//
// The session lock is held across the external call: concurrent analyses on
// one session serialize, which is what keeps quota exhaustion deterministic.
func (c *Context) AnalyzePhoto(ctx context.Context, p patient.Record, image []byte, classify ClassifierFunc) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return nil, errors.NewSessionClosedError()
	case StateQuotaExhausted:
		return nil, errors.NewQuotaExhaustedError()
	}
	if c.remaining <= 0 {
		// remaining and state are updated together; this is unreachable
		// unless the record was seeded at zero.
		c.state = StateQuotaExhausted
		return nil, errors.NewQuotaExhaustedError()
	}

	value, err := classify(ctx, image)
	if err != nil {
		return nil, err
	}

	rounded := triage.Round2(value)
	tier, message := triage.Classify(rounded)

	result := Result{
		Patient:    p,
		Value:      rounded,
		Tier:       tier,
		Message:    message,
		AnalyzedAt: c.now(),
		Image:      newImageRef(image),
	}

	c.batch = append(c.batch, result)
	c.remaining--
	if c.remaining == 0 {
		c.state = StateQuotaExhausted
	}

	return &result, nil
}

// PhotoOutcome reports what happened to one photo of a batch. Exactly one of
// Result, Err, Skipped describes it: a skipped photo was never attempted
// because quota ran out earlier in the batch.
type PhotoOutcome struct {
	Index   int
	Result  *Result
	Err     error
	Skipped bool
}

// AnalyzeBatch applies AnalyzePhoto to each image in input order, serially.
// The moment quota reaches zero the remaining images are reported as skipped,
// not attempted and not failed. Per-photo classifier failures are recorded
// with their index and the batch continues. Cancellation stops between
// photos and returns ctx's error along with the outcomes so far; batch and
// quota stay consistent with exactly the photos completed.
func (c *Context) AnalyzeBatch(ctx context.Context, p patient.Record, images [][]byte, classify ClassifierFunc) ([]PhotoOutcome, error) {
	outcomes := make([]PhotoOutcome, 0, len(images))

	for i, image := range images {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		if c.Remaining() <= 0 {
			for j := i; j < len(images); j++ {
				outcomes = append(outcomes, PhotoOutcome{Index: j, Skipped: true})
			}
			return outcomes, nil
		}

		result, err := c.AnalyzePhoto(ctx, p, image, classify)
		if err != nil {
			if errors.IsQuotaExhausted(err) {
				for j := i; j < len(images); j++ {
					outcomes = append(outcomes, PhotoOutcome{Index: j, Skipped: true})
				}
				return outcomes, nil
			}
			outcomes = append(outcomes, PhotoOutcome{Index: i, Err: errors.NewAnalysisError(i, err)})
			continue
		}

		outcomes = append(outcomes, PhotoOutcome{Index: i, Result: result})
	}

	return outcomes, nil
}

// Results returns a copy of the batch in insertion order.
func (c *Context) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.batch))
	copy(out, c.batch)
	return out
}

// ResultAt returns the batch entry at index.
func (c *Context) ResultAt(index int) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.batch) {
		return Result{}, false
	}
	return c.batch[index], true
}

// ResetBatch clears accumulated results. Quota and session state are
// untouched: reset is about starting a new worksheet, not refunding photos.
func (c *Context) ResetBatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = nil
	c.currentPatient = nil
}

// Close invalidates the session. Every subsequent analysis returns a
// session-closed error; the registry drops the context separately.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
}
