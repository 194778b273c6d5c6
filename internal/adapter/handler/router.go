package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/call-manager-team/call-manager/internal/infrastructure/http/middleware"
	"github.com/call-manager-team/call-manager/internal/usecase/auth"
	"github.com/call-manager-team/call-manager/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	oauthService    *auth.OAuthService
	authHandler     *Auth
	meetingHandler  *Meeting
	analysisHandler *Analysis
	playerHandler   *Player
	webhookHandler  *WebhookHandler
	storageHandler  *Storage
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	oauthService *auth.OAuthService,
	authHandler *Auth,
	meetingHandler *Meeting,
	analysisHandler *Analysis,
	playerHandler *Player,
	webhookHandler *WebhookHandler,
	storageHandler *Storage,
) *Router {
	return &Router{
		cfg:             cfg,
		oauthService:    oauthService,
		authHandler:     authHandler,
		meetingHandler:  meetingHandler,
		analysisHandler: analysisHandler,
		playerHandler:   playerHandler,
		webhookHandler:  webhookHandler,
		storageHandler:  storageHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupWebhookRoutes(v1)

	authenticated := v1.Group("", middleware.EchoAuth(rt.oauthService))
	rt.setupMeetingRoutes(authenticated)
	rt.setupAnalysisRoutes(authenticated)
	rt.setupPlayerRoutes(authenticated)
	rt.setupStorageRoutes(authenticated)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.GET("/google/login", rt.authHandler.GoogleLogin)
	authGroup.GET("/google/callback", rt.authHandler.GoogleCallback)
	authGroup.POST("/refresh", rt.authHandler.RefreshToken)
	authGroup.POST("/logout", rt.authHandler.Logout)
	authGroup.GET("/me", rt.authHandler.Me)
}

// setupWebhookRoutes configures inbound webhook routes. These endpoints
// authenticate via signatures carried on the request, not via sessions.
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks")

	webhookGroup.POST("/livekit", rt.webhookHandler.HandleLivekitWebhook)
	webhookGroup.POST("/videointel", rt.webhookHandler.HandleVideoIntelWebhook)
}

// setupMeetingRoutes configures meeting lifecycle and recording routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	meetingGroup.POST("", rt.meetingHandler.CreateMeeting)
	meetingGroup.GET("", rt.meetingHandler.ListMeetings)
	meetingGroup.GET("/:id", rt.meetingHandler.GetMeeting)
	meetingGroup.PATCH("/:id/end", rt.meetingHandler.EndMeeting)
	meetingGroup.DELETE("/:id", rt.meetingHandler.DeleteMeeting)

	meetingGroup.POST("/:id/participants", rt.meetingHandler.JoinMeeting)
	meetingGroup.DELETE("/:id/participants/me", rt.meetingHandler.LeaveMeeting)
	meetingGroup.GET("/:id/participants", rt.meetingHandler.GetParticipants)

	meetingGroup.POST("/:id/recordings", rt.meetingHandler.StartRecording)
	meetingGroup.GET("/:id/recordings", rt.meetingHandler.GetRecordings)

	recordingGroup := g.Group("/recordings")
	recordingGroup.POST("/:id/stop", rt.meetingHandler.StopRecording)
}

// setupAnalysisRoutes configures video analysis routes
func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	analysisGroup := g.Group("/analyses")

	analysisGroup.POST("", rt.analysisHandler.RegisterAnalysis)
	analysisGroup.GET("", rt.analysisHandler.ListAnalyses)
	analysisGroup.POST("/transcriptions", rt.analysisHandler.StartTranscription)
	analysisGroup.GET("/:id", rt.analysisHandler.GetAnalysis)
	analysisGroup.POST("/:id/annotations", rt.analysisHandler.IngestAnnotations)
	analysisGroup.GET("/:id/document", rt.analysisHandler.GetDocument)
	analysisGroup.GET("/:id/views/:kind", rt.analysisHandler.GetView)
	analysisGroup.GET("/:id/timeline", rt.analysisHandler.GetTimeline)
	analysisGroup.GET("/:id/overlay", rt.analysisHandler.GetOverlay)
}

// setupPlayerRoutes configures playback session routes
func (rt *Router) setupPlayerRoutes(g *echo.Group) {
	playerGroup := g.Group("/players")

	playerGroup.POST("", rt.playerHandler.OpenSession)
	playerGroup.POST("/:id/time", rt.playerHandler.UpdateTime)
	playerGroup.POST("/:id/seek", rt.playerHandler.Seek)
	playerGroup.POST("/:id/kind", rt.playerHandler.SetKind)
	playerGroup.POST("/:id/mode", rt.playerHandler.SetMode)
	playerGroup.POST("/:id/pause", rt.playerHandler.Pause)
	playerGroup.POST("/:id/focus", rt.playerHandler.RecordFocus)
	playerGroup.DELETE("/:id", rt.playerHandler.CloseSession)
}

// setupStorageRoutes configures presigned upload/download routes
func (rt *Router) setupStorageRoutes(g *echo.Group) {
	storageGroup := g.Group("/storage")

	storageGroup.POST("/uploads", rt.storageHandler.PresignUpload)
	storageGroup.GET("/downloads", rt.storageHandler.PresignDownload)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
