package usecases

import (
	"context"

	"glycoanalyzer/internal/domain/session"
)

type GetBatchCommand struct {
	SessionID string
}

type GetBatchResult struct {
	Results         []session.Result
	RemainingPhotos int
	State           session.State
}

type GetBatchUseCase struct {
	registry SessionRegistry
}

func NewGetBatchUseCase(registry SessionRegistry) *GetBatchUseCase {
	return &GetBatchUseCase{registry: registry}
}

func (uc *GetBatchUseCase) Execute(_ context.Context, cmd GetBatchCommand) (*GetBatchResult, error) {
	sess, err := uc.registry.Get(cmd.SessionID)
	if err != nil {
		return nil, err
	}

	return &GetBatchResult{
		Results:         sess.Results(),
		RemainingPhotos: sess.Remaining(),
		State:           sess.State(),
	}, nil
}
