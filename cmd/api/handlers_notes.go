package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/webhook"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
)

// Create note endpoint. Async requests are queued and answered with 202.
// The daily quota is charged only once the reference and callback are valid.
func (api *API) createNote(c *gin.Context) {
	var req struct {
		URL         string `json:"url" binding:"required"`
		Async       bool   `json:"async"`
		CallbackURL string `json:"callback_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	if _, err := youtube.ExtractVideoID(req.URL); err != nil {
		api.respondError(c, err)
		return
	}
	if req.CallbackURL != "" {
		if err := webhook.ValidateURL(req.CallbackURL); err != nil {
			api.respondError(c, err)
			return
		}
	}
	if api.quota != nil && !middleware.ConsumeQuota(c, api.quota, api.dailyQuota, api.logger) {
		return
	}

	userID, _ := middleware.GetUserID(c)

	if req.Async || req.CallbackURL != "" {
		job, err := api.notes.SubmitJob(c.Request.Context(), userID, req.URL, req.CallbackURL)
		if err != nil {
			api.respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, job)
		return
	}

	note, err := api.notes.CreateNote(c.Request.Context(), userID, req.URL)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

// List notes endpoint
func (api *API) listNotes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	userID, _ := middleware.GetUserID(c)

	list, err := api.notes.ListNotes(c.Request.Context(), userID, limit, offset)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notes":  list,
		"limit":  limit,
		"offset": offset,
	})
}

// Get note endpoint
func (api *API) getNote(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	note, err := api.notes.GetNote(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// Delete note endpoint
func (api *API) deleteNote(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	noteID := c.Param("id")

	if err := api.notes.DeleteNote(c.Request.Context(), userID, noteID); err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully", "note_id": noteID})
}

// Download note endpoint, redirects to a presigned markdown URL
func (api *API) downloadNote(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	url, err := api.notes.DownloadURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	if c.Query("redirect") == "false" {
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Chat about a note's video
func (api *API) chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	userID, _ := middleware.GetUserID(c)

	reply, err := api.notes.Chat(c.Request.Context(), userID, c.Param("id"), req.Message)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// Get job endpoint
func (api *API) getJob(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	job, err := api.notes.GetJob(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Transcript preview endpoint. Full URLs go in the ref query parameter since
// they cannot travel in a path segment.
func (api *API) getTranscript(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		ref = c.Param("ref")
	}

	t, err := api.notes.Transcript(c.Request.Context(), ref)
	if err != nil {
		api.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}
