package usecases

import (
	"context"

	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
)

// Classifier is the external vision service seen from the application layer.
type Classifier interface {
	Analyze(ctx context.Context, image []byte) (float64, error)
}

type AnalyzePhotosCommand struct {
	SessionID string
	Images    [][]byte
}

type AnalyzePhotosResult struct {
	Outcomes        []session.PhotoOutcome
	RemainingPhotos int
	QuotaExhausted  bool
}

type AnalyzePhotosUseCase struct {
	registry   SessionRegistry
	classifier Classifier
	logger     logger.Interface
}

func NewAnalyzePhotosUseCase(registry SessionRegistry, classifier Classifier, logger logger.Interface) *AnalyzePhotosUseCase {
	return &AnalyzePhotosUseCase{
		registry:   registry,
		classifier: classifier,
		logger:     logger,
	}
}

func (uc *AnalyzePhotosUseCase) Execute(ctx context.Context, cmd AnalyzePhotosCommand) (*AnalyzePhotosResult, error) {
	sess, err := uc.registry.Get(cmd.SessionID)
	if err != nil {
		return nil, err
	}

	pat, ok := sess.CurrentPatient()
	if !ok {
		return nil, errors.NewBadRequestError("Aucun patient enregistré pour cette session")
	}

	if len(cmd.Images) == 0 {
		return nil, errors.NewBadRequestError("Aucune photo fournie")
	}

	outcomes, err := sess.AnalyzeBatch(ctx, pat, cmd.Images, uc.classifier.Analyze)
	if err != nil {
		// Cancellation mid-batch. Completed outcomes and quota stay consistent.
		uc.logger.Warnw("batch interrupted",
			"session_id", sess.ID(),
			"completed", len(outcomes),
			"error", err,
		)
		return nil, err
	}

	analyzed, failed, skipped := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Err != nil:
			failed++
		default:
			analyzed++
		}
	}

	uc.logger.Infow("batch analyzed",
		"session_id", sess.ID(),
		"analyzed", analyzed,
		"failed", failed,
		"skipped", skipped,
		"remaining_photos", sess.Remaining(),
	)

	return &AnalyzePhotosResult{
		Outcomes:        outcomes,
		RemainingPhotos: sess.Remaining(),
		QuotaExhausted:  sess.State() == session.StateQuotaExhausted,
	}, nil
}
