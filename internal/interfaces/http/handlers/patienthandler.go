package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/interfaces/http/middleware"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

type PatientHandler struct {
	registerUseCase *usecases.RegisterPatientUseCase
	logger          logger.Interface
}

func NewPatientHandler(registerUC *usecases.RegisterPatientUseCase, logger logger.Interface) *PatientHandler {
	return &PatientHandler{
		registerUseCase: registerUC,
		logger:          logger,
	}
}

type RegisterPatientRequest struct {
	FullName     string `json:"nom_complet"`
	Telephone    string `json:"telephone"`
	DiabetesType string `json:"type_diabete"`
	Treatment    string `json:"traitement"`
}

// Register sets the patient the following analyses are attributed to. Field
// validation lives in the usecase so the error taxonomy stays in one place.
func (h *PatientHandler) Register(c *gin.Context) {
	var req RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), usecases.RegisterPatientCommand{
		SessionID:    middleware.SessionID(c),
		FullName:     req.FullName,
		Telephone:    req.Telephone,
		DiabetesType: req.DiabetesType,
		Treatment:    req.Treatment,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "patient enregistré", result.Patient)
}
