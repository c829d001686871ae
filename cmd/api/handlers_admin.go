package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/middleware"
)

// List users endpoint
func (api *API) listUsers(c *gin.Context) {
	users, err := api.users.ListUsers(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Approve or revoke a user
func (api *API) setUserApproval(c *gin.Context) {
	var req struct {
		IsApproved *bool `json:"is_approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_approved is required"})
		return
	}

	user, err := api.users.SetUserApproval(c.Request.Context(), c.Param("id"), *req.IsApproved)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Dashboard stats endpoint
func (api *API) getStats(c *gin.Context) {
	user, _ := middleware.GetSessionUser(c)

	stats, err := api.users.GetStats(c.Request.Context(), user)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
