package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the static admin identity: a username and a bcrypt hash of
// the password, both from process configuration. There is no user table;
// the admin surface is operator-only.
type Credentials struct {
	Username     string
	PasswordHash string
}

type Handler struct {
	Creds  Credentials
	Tokens TokenService
}

func NewHandler(creds Credentials, tokens TokenService) *Handler {
	return &Handler{Creds: creds, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if h.Creds.Username == "" || h.Creds.PasswordHash == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin login disabled"})
		return
	}
	if req.Username != h.Creds.Username {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.Creds.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Sign(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}
