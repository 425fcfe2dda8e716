package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/middleware"
	"github.com/AgustinBertolini/e-commerce-daw/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Login exchanges credentials for a backend session. A locked account
// answers 429 with the remaining lockout seconds so the client can
// render a countdown.
func (a *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	entry := middleware.Entry(c)
	cred, err := a.auth.Login(c.Request.Context(), entry.API, entry.Auth, req)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": cred.UserID})
}

// Logout erases the session credential and markers.
func (a *AuthController) Logout(c *gin.Context) {
	entry := middleware.Entry(c)
	a.auth.Logout(c.Request.Context(), entry.Auth)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Register creates a backend account.
func (a *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password, nombre and apellido are required"})
		return
	}

	entry := middleware.Entry(c)
	if err := a.auth.Register(c.Request.Context(), entry.API, req); err != nil {
		apperrors.HandleGin(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

// Session reports whether the session still holds a live credential,
// without a backend round trip.
func (a *AuthController) Session(c *gin.Context) {
	entry := middleware.Entry(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": entry.Auth.Valid(),
		"userId":        entry.Auth.UserID(),
	})
}
