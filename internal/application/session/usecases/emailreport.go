package usecases

import (
	"context"

	"glycoanalyzer/internal/application/report"
	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

// ReportSender delivers a rendered report to a recipient.
type ReportSender interface {
	SendAnalysisReport(to string, projection report.Projection) error
}

type EmailReportCommand struct {
	SessionID   string `json:"-"`
	ResultIndex int    `json:"-"`
	Recipient   string `json:"recipient" validate:"required,email"`
}

type EmailReportUseCase struct {
	registry SessionRegistry
	sender   ReportSender
	logger   logger.Interface
}

func NewEmailReportUseCase(registry SessionRegistry, sender ReportSender, logger logger.Interface) *EmailReportUseCase {
	return &EmailReportUseCase{
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

func (uc *EmailReportUseCase) Execute(_ context.Context, cmd EmailReportCommand) error {
	sess, err := uc.registry.Get(cmd.SessionID)
	if err != nil {
		return err
	}

	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}

	result, ok := sess.ResultAt(cmd.ResultIndex)
	if !ok {
		return errors.NewNotFoundError("Résultat introuvable dans le lot courant")
	}

	projection := report.FromResult(result)
	if err := uc.sender.SendAnalysisReport(cmd.Recipient, projection); err != nil {
		uc.logger.Errorw("failed to send report",
			"session_id", sess.ID(),
			"result_index", cmd.ResultIndex,
			"error", err,
		)
		return errors.NewInternalError("échec de l'envoi du rapport par email")
	}

	uc.logger.Infow("report emailed", "session_id", sess.ID(), "result_index", cmd.ResultIndex)
	return nil
}
