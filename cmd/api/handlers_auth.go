package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup endpoint
func (api *API) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := api.auth.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. An administrator must approve it before you can log in.",
		"user":    user,
	})
}

// Login endpoint
func (api *API) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := api.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.respondError(c, err)
		return
	}

	session := models.SessionUser{ID: user.ID, Email: user.Email, Role: user.Role}
	token, err := middleware.GenerateToken(session, api.authCfg.SessionTTL)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(api.cookieName(), token, int(api.authCfg.SessionTTL.Seconds()), "/", "", api.authCfg.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  session,
	})
}

// Logout endpoint
func (api *API) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(api.cookieName(), "", -1, "/", "", api.authCfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Current session endpoint
func (api *API) me(c *gin.Context) {
	user, _ := middleware.GetSessionUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (api *API) cookieName() string {
	if api.authCfg.CookieName == "" {
		return middleware.DefaultCookieName
	}
	return api.authCfg.CookieName
}
