package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vantutran2k1/tollfleet/internal/core/service"
)

// AuthHandler logs the operator in against the credentials configured at
// boot and hands back a bearer token for the control endpoints.
type AuthHandler struct {
	svc          *service.AuthService
	operator     string
	passwordHash string
}

func NewAuthHandler(svc *service.AuthService, operator, passwordHash string) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		operator:     operator,
		passwordHash: passwordHash,
	}
}

type LoginRequest struct {
	Operator string `json:"operator" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Operator != h.operator || !h.svc.CheckPasswordHash(req.Password, h.passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid operator or password"})
		return
	}

	token, err := h.svc.GenerateToken(req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
