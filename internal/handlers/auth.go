package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync-service/internal/auth"
	"chatsync-service/internal/telemetry"
	"chatsync-service/pkg/errors"
)

// AuthHandler manages sign-up, login and logout.
type AuthHandler struct {
	issuer auth.Issuer
	audit  *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(issuer auth.Issuer, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{issuer: issuer, audit: audit}
}

// SignUp registers a principal. All fields are required; the number is the
// unique digits-only handle other users look the profile up by.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Number   string `json:"number" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter all fields"})
		return
	}
	if !isDigitsOnly(req.Number) {
		respondError(c, errors.ErrInvalidNumber)
		return
	}

	user, token, err := h.issuer.SignUp(c.Request.Context(), req.Name, req.Number, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Set("userID", user.ID)
	emitAudit(c, h.audit, "INFO", "user signed up")
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login exchanges email+password for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter all fields"})
		return
	}

	user, token, err := h.issuer.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeUnauthenticated {
			emitAudit(c, h.audit, "WARN", "login failed")
		}
		respondError(c, err)
		return
	}

	c.Set("userID", user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout revokes the caller's token. Revoking twice is fine.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := h.issuer.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
