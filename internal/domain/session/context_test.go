package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/domain/patient"
	"glycoanalyzer/internal/domain/triage"
	"glycoanalyzer/internal/shared/errors"
)

// =============================================================================
// Test helpers
// =============================================================================

var sessNow = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func newTestContext(t *testing.T, quota int) *Context {
	t.Helper()
	rec := &license.Record{
		Email:           "test@medecin.com",
		LicenseeName:    "Dr. Test Médecin",
		Structure:       "Centre de Santé Test",
		TierLabel:       "Découverte",
		ExpiresAt:       sessNow.Add(90 * 24 * time.Hour),
		RemainingPhotos: quota,
		Status:          license.StatusActive,
	}
	return NewContext(rec).WithClock(func() time.Time { return sessNow })
}

func testPatient(t *testing.T) patient.Record {
	t.Helper()
	p, err := patient.New("Moussa Diallo", "761234567", patient.DiabetesType2, patient.TreatmentOralAntidiabetic, sessNow)
	require.NoError(t, err)
	return p
}

// scriptedClassifier returns the given values in order; an entry with a
// non-nil error fails that call.
type scripted struct {
	value float64
	err   error
}

func scriptedClassifier(script ...scripted) ClassifierFunc {
	i := 0
	return func(_ context.Context, _ []byte) (float64, error) {
		s := script[i%len(script)]
		i++
		if s.err != nil {
			return 0, s.err
		}
		return s.value, nil
	}
}

func fixedClassifier(value float64) ClassifierFunc {
	return func(_ context.Context, _ []byte) (float64, error) {
		return value, nil
	}
}

var photo = []byte("\xff\xd8\xff\xe0fake-jpeg-bytes")

// =============================================================================
// AnalyzePhoto
// =============================================================================

func TestAnalyzePhotoSuccess(t *testing.T) {
	sess := newTestContext(t, 5)
	p := testPatient(t)

	result, err := sess.AnalyzePhoto(context.Background(), p, photo, fixedClassifier(1.204))
	require.NoError(t, err)

	assert.Equal(t, 1.20, result.Value)
	assert.Equal(t, triage.TierHyper, result.Tier)
	assert.Equal(t, triage.MessageHyper, result.Message)
	assert.Equal(t, p, result.Patient)
	assert.Equal(t, sessNow, result.AnalyzedAt)
	assert.NotEmpty(t, result.Image.ID)
	assert.Equal(t, len(photo), result.Image.SizeBytes)

	assert.Equal(t, 4, sess.Remaining())
	assert.Len(t, sess.Results(), 1)
}

func TestAnalyzePhotoClassifierFailureConsumesNothing(t *testing.T) {
	sess := newTestContext(t, 3)

	_, err := sess.AnalyzePhoto(context.Background(), testPatient(t), photo,
		scriptedClassifier(scripted{err: errors.NewServiceError(assert.AnError)}))
	require.Error(t, err)

	assert.NotNil(t, errors.GetClassifyError(err))
	assert.Equal(t, 3, sess.Remaining(), "failed classification must not consume quota")
	assert.Empty(t, sess.Results(), "failed classification must not produce a result")
	assert.Equal(t, StateAuthenticated, sess.State())
}

func TestAnalyzePhotoQuotaExhausted(t *testing.T) {
	sess := newTestContext(t, 1)
	p := testPatient(t)

	_, err := sess.AnalyzePhoto(context.Background(), p, photo, fixedClassifier(0.95))
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Remaining())
	assert.Equal(t, StateQuotaExhausted, sess.State())

	calls := 0
	counting := func(_ context.Context, _ []byte) (float64, error) {
		calls++
		return 0.95, nil
	}
	_, err = sess.AnalyzePhoto(context.Background(), p, photo, counting)
	require.Error(t, err)
	assert.True(t, errors.IsQuotaExhausted(err))
	assert.Zero(t, calls, "classifier must not be invoked once quota is exhausted")
}

func TestAnalyzePhotoAfterClose(t *testing.T) {
	sess := newTestContext(t, 5)
	sess.Close()

	_, err := sess.AnalyzePhoto(context.Background(), testPatient(t), photo, fixedClassifier(0.95))
	require.Error(t, err)
	assert.Equal(t, 5, sess.Remaining())
}

func TestAnalyzePhotoClassifiesRoundedValue(t *testing.T) {
	// 0.696 rounds to 0.70, which sits on the Normal side of the boundary.
	// Stored value and tier must agree.
	sess := newTestContext(t, 1)

	result, err := sess.AnalyzePhoto(context.Background(), testPatient(t), photo, fixedClassifier(0.696))
	require.NoError(t, err)
	assert.Equal(t, 0.70, result.Value)
	assert.Equal(t, triage.TierNormal, result.Tier)
}

// =============================================================================
// AnalyzeBatch
// =============================================================================

func TestAnalyzeBatchAllSucceedWithinQuota(t *testing.T) {
	sess := newTestContext(t, 5)
	images := [][]byte{photo, photo, photo}

	outcomes, err := sess.AnalyzeBatch(context.Background(), testPatient(t), images,
		scriptedClassifier(scripted{value: 0.65}, scripted{value: 0.95}, scripted{value: 1.20}))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.NotNil(t, o.Result)
		assert.False(t, o.Skipped)
	}
	assert.Equal(t, 2, sess.Remaining())

	results := sess.Results()
	require.Len(t, results, 3)
	assert.Equal(t, triage.TierHypo, results[0].Tier)
	assert.Equal(t, triage.TierNormal, results[1].Tier)
	assert.Equal(t, triage.TierHyper, results[2].Tier)
}

func TestAnalyzeBatchStopsAtQuotaZero(t *testing.T) {
	// The end-to-end scenario: quota 2, three photos 0.65 / 1.20 / 0.95.
	sess := newTestContext(t, 2)

	outcomes, err := sess.AnalyzeBatch(context.Background(), testPatient(t),
		[][]byte{photo, photo, photo},
		scriptedClassifier(scripted{value: 0.65}, scripted{value: 1.20}, scripted{value: 0.95}))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	require.NotNil(t, outcomes[0].Result)
	assert.Equal(t, triage.TierHypo, outcomes[0].Result.Tier)
	require.NotNil(t, outcomes[1].Result)
	assert.Equal(t, triage.TierHyper, outcomes[1].Result.Tier)
	assert.True(t, outcomes[2].Skipped, "third photo must be skipped, not failed")
	assert.Nil(t, outcomes[2].Err)

	assert.Equal(t, 0, sess.Remaining())
	assert.Equal(t, StateQuotaExhausted, sess.State())

	results := sess.Results()
	require.Len(t, results, 2)
	assert.Equal(t, 0.65, results[0].Value)
	assert.Equal(t, 1.20, results[1].Value)
}

func TestAnalyzeBatchFailuresDoNotStopBatch(t *testing.T) {
	sess := newTestContext(t, 5)

	outcomes, err := sess.AnalyzeBatch(context.Background(), testPatient(t),
		[][]byte{photo, photo, photo},
		scriptedClassifier(
			scripted{value: 0.95},
			scripted{err: errors.NewParseError("erreur")},
			scripted{value: 1.20},
		))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.NotNil(t, outcomes[0].Result)
	require.Error(t, outcomes[1].Err)
	assert.NotNil(t, outcomes[2].Result)

	var aErr *errors.AnalysisError
	require.ErrorAs(t, outcomes[1].Err, &aErr)
	assert.Equal(t, 1, aErr.PhotoIndex)

	// Two successes consumed two units; the failure consumed none.
	assert.Equal(t, 3, sess.Remaining())
	assert.Len(t, sess.Results(), 2)
}

func TestAnalyzeBatchCancellation(t *testing.T) {
	sess := newTestContext(t, 10)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	classify := func(_ context.Context, _ []byte) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0.95, nil
	}

	outcomes, err := sess.AnalyzeBatch(ctx, testPatient(t), [][]byte{photo, photo, photo, photo}, classify)
	require.ErrorIs(t, err, context.Canceled)

	// Exactly the completed photos are in the batch and accounted for.
	assert.Len(t, outcomes, 2)
	assert.Len(t, sess.Results(), 2)
	assert.Equal(t, 8, sess.Remaining())
}

func TestAnalyzeBatchDeterministicStopPoint(t *testing.T) {
	// Same inputs, same quota: the batch stops at the same image every time.
	for run := 0; run < 3; run++ {
		sess := newTestContext(t, 3)
		outcomes, err := sess.AnalyzeBatch(context.Background(), testPatient(t),
			[][]byte{photo, photo, photo, photo, photo}, fixedClassifier(0.95))
		require.NoError(t, err)
		require.Len(t, outcomes, 5)
		assert.NotNil(t, outcomes[2].Result)
		assert.True(t, outcomes[3].Skipped)
		assert.True(t, outcomes[4].Skipped)
	}
}

// =============================================================================
// Batch lifecycle
// =============================================================================

func TestResetBatchIsIdempotentAndPreservesQuota(t *testing.T) {
	sess := newTestContext(t, 5)
	_, err := sess.AnalyzePhoto(context.Background(), testPatient(t), photo, fixedClassifier(0.95))
	require.NoError(t, err)
	require.Len(t, sess.Results(), 1)

	sess.ResetBatch()
	assert.Empty(t, sess.Results())
	assert.Equal(t, 4, sess.Remaining(), "reset must not refund quota")

	sess.ResetBatch()
	assert.Empty(t, sess.Results())
	assert.Equal(t, 4, sess.Remaining())
}

func TestBatchSurvivesPatientChanges(t *testing.T) {
	sess := newTestContext(t, 5)
	p1 := testPatient(t)
	p2, err := patient.New("Awa Ndiaye", "771112233", patient.DiabetesType1, patient.TreatmentInsulin, sessNow)
	require.NoError(t, err)

	_, err = sess.AnalyzePhoto(context.Background(), p1, photo, fixedClassifier(0.95))
	require.NoError(t, err)
	_, err = sess.AnalyzePhoto(context.Background(), p2, photo, fixedClassifier(0.60))
	require.NoError(t, err)

	results := sess.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "Moussa Diallo", results[0].Patient.FullName)
	assert.Equal(t, "Awa Ndiaye", results[1].Patient.FullName)
}

func TestResultAt(t *testing.T) {
	sess := newTestContext(t, 5)
	_, err := sess.AnalyzePhoto(context.Background(), testPatient(t), photo, fixedClassifier(0.95))
	require.NoError(t, err)

	r, ok := sess.ResultAt(0)
	assert.True(t, ok)
	assert.Equal(t, 0.95, r.Value)

	_, ok = sess.ResultAt(1)
	assert.False(t, ok)
	_, ok = sess.ResultAt(-1)
	assert.False(t, ok)
}

// =============================================================================
// Concurrency
// =============================================================================

func TestConcurrentAnalyzePhotoQuotaIsExact(t *testing.T) {
	const quota = 64
	const workers = 48

	sess := newTestContext(t, quota)
	p := testPatient(t)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sess.AnalyzePhoto(context.Background(), p, photo, fixedClassifier(0.95))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, quota-workers, sess.Remaining())
	assert.Len(t, sess.Results(), workers)
}

func TestConcurrentAnalyzeBeyondQuota(t *testing.T) {
	const quota = 10
	const workers = 25

	sess := newTestContext(t, quota)
	p := testPatient(t)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sess.AnalyzePhoto(context.Background(), p, photo, fixedClassifier(0.95))
		}()
	}
	wg.Wait()

	// Never negative, never over-consumed.
	assert.Equal(t, 0, sess.Remaining())
	assert.Len(t, sess.Results(), quota)
	assert.Equal(t, StateQuotaExhausted, sess.State())
}
