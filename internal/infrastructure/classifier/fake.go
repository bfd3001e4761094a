package classifier

import (
	"context"
	stderrors "errors"
	"sync"

	"glycoanalyzer/internal/shared/errors"
)

// FakeClassifier replays scripted values in order. It backs tests and the
// offline server mode used when no API key is configured.
type FakeClassifier struct {
	mu     sync.Mutex
	script []FakeReply
	calls  int
}

// FakeReply is one scripted classifier outcome.
type FakeReply struct {
	Value float64
	Err   error
}

func NewFakeClassifier(script ...FakeReply) *FakeClassifier {
	return &FakeClassifier{script: script}
}

// NewOfflineClassifier returns a classifier that always refuses: analyses
// fail as service errors until a real classifier is configured.
func NewOfflineClassifier() *FakeClassifier {
	return &FakeClassifier{}
}

func (f *FakeClassifier) Analyze(ctx context.Context, _ []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.NewServiceError(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.calls >= len(f.script) {
		f.calls++
		return 0, errors.NewServiceError(errUnconfigured)
	}
	reply := f.script[f.calls]
	f.calls++
	if reply.Err != nil {
		return 0, reply.Err
	}
	return reply.Value, nil
}

// Calls reports how many times Analyze ran.
func (f *FakeClassifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errUnconfigured = stderrors.New("classifier not configured")
