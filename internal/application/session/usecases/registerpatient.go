package usecases

import (
	"context"
	"time"

	"glycoanalyzer/internal/domain/patient"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

type RegisterPatientCommand struct {
	SessionID    string `json:"-"`
	FullName     string `json:"nom_complet" validate:"required"`
	Telephone    string `json:"telephone" validate:"required"`
	DiabetesType string `json:"type_diabete" validate:"required"`
	Treatment    string `json:"traitement" validate:"required"`
}

type RegisterPatientResult struct {
	Patient patient.Record
}

type RegisterPatientUseCase struct {
	registry SessionRegistry
	now      func() time.Time
	logger   logger.Interface
}

func NewRegisterPatientUseCase(registry SessionRegistry, logger logger.Interface) *RegisterPatientUseCase {
	return &RegisterPatientUseCase{
		registry: registry,
		now:      time.Now,
		logger:   logger,
	}
}

func (uc *RegisterPatientUseCase) Execute(ctx context.Context, cmd RegisterPatientCommand) (*RegisterPatientResult, error) {
	sess, err := uc.registry.Get(cmd.SessionID)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	rec, err := patient.New(
		cmd.FullName,
		cmd.Telephone,
		patient.DiabetesType(cmd.DiabetesType),
		patient.Treatment(cmd.Treatment),
		uc.now(),
	)
	if err != nil {
		return nil, err
	}

	sess.SetCurrentPatient(rec)

	uc.logger.Infow("patient registered", "session_id", sess.ID(), "patient", rec.FullName)

	return &RegisterPatientResult{Patient: rec}, nil
}
