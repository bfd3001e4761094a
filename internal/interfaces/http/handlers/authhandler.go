package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"glycoanalyzer/internal/application/session/usecases"
	"glycoanalyzer/internal/interfaces/http/middleware"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

type AuthHandler struct {
	loginUseCase  *usecases.LoginUseCase
	logoutUseCase *usecases.LogoutUseCase
	logger        logger.Interface
}

func NewAuthHandler(
	loginUC *usecases.LoginUseCase,
	logoutUC *usecases.LogoutUseCase,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:  loginUC,
		logoutUseCase: logoutUC,
		logger:        logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token           string    `json:"token"`
	ExpiresIn       int64     `json:"expires_in"`
	LicenseeName    string    `json:"nom_medecin"`
	Structure       string    `json:"structure"`
	TierLabel       string    `json:"type_licence"`
	LicenseExpires  time.Time `json:"date_expiration"`
	RemainingPhotos int       `json:"photos_restantes"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "email et mot de passe requis")
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), usecases.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "connexion réussie", LoginResponse{
		Token:           result.Token,
		ExpiresIn:       result.ExpiresIn,
		LicenseeName:    result.LicenseeName,
		Structure:       result.Structure,
		TierLabel:       result.TierLabel,
		LicenseExpires:  result.LicenseExpires,
		RemainingPhotos: result.RemainingPhotos,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.logoutUseCase.Execute(c.Request.Context(), usecases.LogoutCommand{
		SessionID: middleware.SessionID(c),
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "session terminée", nil)
}
