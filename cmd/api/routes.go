package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/middleware"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// NotesService is what the HTTP layer needs from internal/notes
type NotesService interface {
	CreateNote(ctx context.Context, userID, videoRef string) (*models.Note, error)
	SubmitJob(ctx context.Context, userID, videoRef, callbackURL string) (*models.Job, error)
	GetJob(ctx context.Context, userID, jobID string) (*models.Job, error)
	GetNote(ctx context.Context, userID, noteID string) (*models.Note, error)
	ListNotes(ctx context.Context, userID string, limit, offset int) ([]*models.NoteSummary, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
	DownloadURL(ctx context.Context, userID, noteID string) (string, error)
	Chat(ctx context.Context, userID, noteID, message string) (*models.ChatReply, error)
	Transcript(ctx context.Context, ref string) (*models.Transcript, error)
}

// AuthService handles credentials
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// UserRepository serves the admin and stats endpoints
type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetUserApproval(ctx context.Context, id string, approved bool) (*models.User, error)
	GetStats(ctx context.Context, user models.SessionUser) (*models.Stats, error)
	Health(ctx context.Context) error
}

func setupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(api.logger))

	// Health check
	router.GET("/health", api.healthCheck)

	v1 := router.Group("/api/v1")
	session := middleware.SessionAuth(api.cookieName())

	// Auth endpoints are limited per IP; everything behind a session per user.
	authGroup := v1.Group("/auth")
	authGroup.Use(api.rateLimit()...)
	{
		authGroup.POST("/signup", api.signup)
		authGroup.POST("/login", api.login)
		authGroup.POST("/logout", api.logout)
		authGroup.GET("/me", session, api.me)
	}

	protected := v1.Group("")
	protected.Use(session)
	protected.Use(api.rateLimit()...)
	{
		protected.GET("/stats", api.getStats)

		// Notes
		protected.POST("/notes", api.createNote)
		protected.GET("/notes", api.listNotes)
		protected.GET("/notes/:id", api.getNote)
		protected.DELETE("/notes/:id", api.deleteNote)
		protected.GET("/notes/:id/download", api.downloadNote)
		protected.POST("/notes/:id/chat", api.chat)

		// Jobs
		protected.GET("/jobs/:id", api.getJob)

		// Transcripts
		protected.GET("/transcripts", api.getTranscript)
		protected.GET("/transcripts/:ref", api.getTranscript)
	}

	// Admin
	admin := v1.Group("/admin")
	admin.Use(session, middleware.RequireAdmin())
	admin.Use(api.rateLimit()...)
	{
		admin.GET("/users", api.listUsers)
		admin.PUT("/users/:id/approval", api.setUserApproval)
	}

	return router
}

// rateLimit returns the limiter middleware, or nothing when limiting is off.
// It keys by the session user when one is set, so it runs after SessionAuth.
func (api *API) rateLimit() []gin.HandlerFunc {
	if api.limiter == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(api.limiter)}
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Check database health
	if err := api.users.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
