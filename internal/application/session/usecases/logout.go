package usecases

import (
	"context"

	"glycoanalyzer/internal/shared/logger"
)

type LogoutCommand struct {
	SessionID string
}

type LogoutUseCase struct {
	registry SessionRegistry
	logger   logger.Interface
}

func NewLogoutUseCase(registry SessionRegistry, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{registry: registry, logger: logger}
}

// Execute closes and discards the session. Logging out an already-gone
// session succeeds: the end state is the same.
func (uc *LogoutUseCase) Execute(_ context.Context, cmd LogoutCommand) error {
	uc.registry.Remove(cmd.SessionID)
	uc.logger.Infow("session closed", "session_id", cmd.SessionID)
	return nil
}
