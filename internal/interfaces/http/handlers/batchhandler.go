package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/interfaces/http/middleware"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

type BatchHandler struct {
	getBatchUseCase    *usecases.GetBatchUseCase
	resetBatchUseCase  *usecases.ResetBatchUseCase
	emailReportUseCase *usecases.EmailReportUseCase
	logger             logger.Interface
}

func NewBatchHandler(
	getBatchUC *usecases.GetBatchUseCase,
	resetBatchUC *usecases.ResetBatchUseCase,
	emailReportUC *usecases.EmailReportUseCase,
	logger logger.Interface,
) *BatchHandler {
	return &BatchHandler{
		getBatchUseCase:    getBatchUC,
		resetBatchUseCase:  resetBatchUC,
		emailReportUseCase: emailReportUC,
		logger:             logger,
	}
}

type BatchResponse struct {
	Results         []session.Result `json:"resultats"`
	RemainingPhotos int              `json:"photos_restantes"`
	State           session.State    `json:"etat"`
}

func (h *BatchHandler) Get(c *gin.Context) {
	result, err := h.getBatchUseCase.Execute(c.Request.Context(), usecases.GetBatchCommand{
		SessionID: middleware.SessionID(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", BatchResponse{
		Results:         result.Results,
		RemainingPhotos: result.RemainingPhotos,
		State:           result.State,
	})
}

func (h *BatchHandler) Reset(c *gin.Context) {
	if err := h.resetBatchUseCase.Execute(c.Request.Context(), usecases.ResetBatchCommand{
		SessionID: middleware.SessionID(c),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "lot réinitialisé", nil)
}

type EmailReportRequest struct {
	Recipient string `json:"recipient"`
}

// EmailReport sends the report for one result of the current batch, addressed
// by its index in the batch.
func (h *BatchHandler) EmailReport(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "index de résultat invalide")
		return
	}

	var req EmailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	if err := h.emailReportUseCase.Execute(c.Request.Context(), usecases.EmailReportCommand{
		SessionID:   middleware.SessionID(c),
		ResultIndex: index,
		Recipient:   req.Recipient,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "rapport envoyé", nil)
}
