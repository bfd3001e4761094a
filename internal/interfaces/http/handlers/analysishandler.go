package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/domain/session"
	"glycoanalyzer/internal/interfaces/http/middleware"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

// maxPhotoBytes bounds a single uploaded photo.
const maxPhotoBytes = 10 << 20

type AnalysisHandler struct {
	analyzeUseCase *usecases.AnalyzePhotosUseCase
	logger         logger.Interface
}

func NewAnalysisHandler(analyzeUC *usecases.AnalyzePhotosUseCase, logger logger.Interface) *AnalysisHandler {
	return &AnalysisHandler{
		analyzeUseCase: analyzeUC,
		logger:         logger,
	}
}

// PhotoOutcomeResponse reports one photo of the submitted batch. Status is
// analyzed, failed, or skipped.
type PhotoOutcomeResponse struct {
	Index  int             `json:"index"`
	Status string          `json:"status"`
	Result *session.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type AnalyzeResponse struct {
	Outcomes        []PhotoOutcomeResponse `json:"resultats"`
	RemainingPhotos int                    `json:"photos_restantes"`
	QuotaExhausted  bool                   `json:"quota_epuise"`
}

// Analyze accepts a multipart form with one or more files under the "photos"
// field and runs them through the classifier in upload order.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "formulaire multipart requis")
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Aucune photo fournie")
		return
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxPhotoBytes {
			utils.ErrorResponse(c, http.StatusBadRequest, "photo trop volumineuse")
			return
		}

		f, err := fh.Open()
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "photo illisible")
			return
		}

		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
		_ = f.Close()
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "photo illisible")
			return
		}

		images = append(images, data)
	}

	result, err := h.analyzeUseCase.Execute(c.Request.Context(), usecases.AnalyzePhotosCommand{
		SessionID: middleware.SessionID(c),
		Images:    images,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "analyse terminée", toAnalyzeResponse(result))
}

func toAnalyzeResponse(result *usecases.AnalyzePhotosResult) AnalyzeResponse {
	outcomes := make([]PhotoOutcomeResponse, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		resp := PhotoOutcomeResponse{Index: o.Index}
		switch {
		case o.Skipped:
			resp.Status = "skipped"
		case o.Err != nil:
			resp.Status = "failed"
			resp.Error = o.Err.Error()
		default:
			resp.Status = "analyzed"
			resp.Result = o.Result
		}
		outcomes = append(outcomes, resp)
	}

	return AnalyzeResponse{
		Outcomes:        outcomes,
		RemainingPhotos: result.RemainingPhotos,
		QuotaExhausted:  result.QuotaExhausted,
	}
}
