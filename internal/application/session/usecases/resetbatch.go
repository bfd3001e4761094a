package usecases

import (
	"context"

	"glycoanalyzer/internal/shared/logger"
)

type ResetBatchCommand struct {
	SessionID string
}

type ResetBatchUseCase struct {
	registry SessionRegistry
	logger   logger.Interface
}

func NewResetBatchUseCase(registry SessionRegistry, logger logger.Interface) *ResetBatchUseCase {
	return &ResetBatchUseCase{registry: registry, logger: logger}
}

// Execute clears the session's result batch and current patient. The quota
// counter is untouched: consumed photos stay consumed.
func (uc *ResetBatchUseCase) Execute(_ context.Context, cmd ResetBatchCommand) error {
	sess, err := uc.registry.Get(cmd.SessionID)
	if err != nil {
		return err
	}

	sess.ResetBatch()
	uc.logger.Infow("batch reset", "session_id", sess.ID(), "remaining_photos", sess.Remaining())
	return nil
}
