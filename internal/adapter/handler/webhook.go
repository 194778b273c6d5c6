package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	analysisUsecase "github.com/call-manager-team/call-manager/internal/usecase/analysis"
	meetingUsecase "github.com/call-manager-team/call-manager/internal/usecase/meeting"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

// WebhookHandler receives callbacks from LiveKit and the external
// annotation service
type WebhookHandler struct {
	meetingService   meetingUsecase.Service
	analysisService  analysisUsecase.Service
	livekitAPIKey    string
	livekitSecret    string
	videointelSecret string
	logger           *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	meetingService meetingUsecase.Service,
	analysisService analysisUsecase.Service,
	livekitAPIKey, livekitSecret, videointelSecret string,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		meetingService:   meetingService,
		analysisService:  analysisService,
		livekitAPIKey:    livekitAPIKey,
		livekitSecret:    livekitSecret,
		videointelSecret: videointelSecret,
		logger:           logger,
	}
}

// HandleLivekitWebhook processes LiveKit webhook events with signature validation
// @Summary      LiveKit webhook
// @Description  Receives webhook events from the LiveKit server
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /webhooks/livekit [post]
func (h *WebhookHandler) HandleLivekitWebhook(c echo.Context) error {
	authProvider := auth.NewSimpleKeyProvider(h.livekitAPIKey, h.livekitSecret)
	event, err := webhook.ReceiveWebhookEvent(c.Request(), authProvider)
	if err != nil {
		h.logger.Warn("livekit webhook signature validation failed", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "invalid_signature",
			"message": "webhook signature validation failed",
		})
	}

	h.logger.Info("livekit webhook received", zap.String("event", event.Event))

	ctx := c.Request().Context()

	switch event.Event {
	case "participant_left":
		if event.Participant == nil || event.Room == nil {
			h.logger.Warn("participant or room missing in event")
			break
		}
		// Egress participants are not real users
		if strings.HasPrefix(event.Participant.Identity, "EG_") {
			break
		}
		if err := h.meetingService.HandleParticipantLeft(ctx, event.Room.Name, event.Participant.Identity); err != nil {
			h.logger.Error("failed to reconcile participant departure",
				zap.String("room", event.Room.Name),
				zap.String("identity", event.Participant.Identity),
				zap.Error(err))
		}

	case "room_finished":
		if event.Room == nil {
			h.logger.Warn("room missing in event")
			break
		}
		if err := h.meetingService.HandleRoomFinished(ctx, event.Room.Name); err != nil {
			h.logger.Error("failed to end meeting from webhook",
				zap.String("room", event.Room.Name),
				zap.Error(err))
		}

	case "egress_ended", "egress_updated":
		h.handleEgressEvent(c, event)

	default:
		h.logger.Debug("unhandled livekit webhook event", zap.String("event", event.Event))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok", "event": event.Event})
}

// handleEgressEvent reconciles recording state from egress webhooks
func (h *WebhookHandler) handleEgressEvent(c echo.Context, event *livekit.WebhookEvent) {
	info := event.EgressInfo
	if info == nil {
		h.logger.Warn("egress info missing in event")
		return
	}

	ctx := c.Request().Context()

	switch info.Status {
	case livekit.EgressStatus_EGRESS_COMPLETE:
		var fileSize int64
		var durationSeconds int
		if len(info.FileResults) > 0 {
			result := info.FileResults[0]
			fileSize = result.Size
			durationSeconds = int(result.Duration / int64(1e9))
		}

		recording, err := h.meetingService.CompleteRecording(ctx, info.EgressId, fileSize, durationSeconds)
		if err != nil {
			h.logger.Error("failed to complete recording",
				zap.String("egress_id", info.EgressId),
				zap.Error(err))
			return
		}
		h.logger.Info("recording completed",
			zap.String("egress_id", info.EgressId),
			zap.String("recording_id", recording.ID.String()),
			zap.Int64("file_size", fileSize),
			zap.Int("duration_seconds", durationSeconds))

	case livekit.EgressStatus_EGRESS_FAILED, livekit.EgressStatus_EGRESS_ABORTED:
		reason := info.Error
		if reason == "" {
			reason = "egress " + info.Status.String()
		}
		if err := h.meetingService.FailRecording(ctx, info.EgressId, reason); err != nil {
			h.logger.Error("failed to mark recording failed",
				zap.String("egress_id", info.EgressId),
				zap.Error(err))
		}

	default:
		// Intermediate statuses carry no state we persist
	}
}

// videoIntelWebhookPayload is the job update envelope posted by the
// annotation service
type videoIntelWebhookPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HandleVideoIntelWebhook processes annotation job updates from the
// external video-intelligence service
// @Summary      Annotation service webhook
// @Description  Receives job status updates signed with an HMAC shared secret
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /webhooks/videointel [post]
func (h *WebhookHandler) HandleVideoIntelWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "failed to read body",
		})
	}

	signature := c.Request().Header.Get("X-Signature")
	if !videointel.VerifyHMAC(h.videointelSecret, body, signature) {
		h.logger.Warn("videointel webhook signature validation failed")
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "invalid_signature",
			"message": "webhook signature validation failed",
		})
	}

	var payload videoIntelWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("failed to parse webhook payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "invalid webhook payload",
		})
	}

	if payload.ID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "job id missing",
		})
	}

	h.logger.Info("videointel webhook received",
		zap.String("job_id", payload.ID),
		zap.String("status", payload.Status))

	if err := h.analysisService.ProcessJobUpdate(c.Request().Context(), payload.ID, payload.Status, payload.Error); err != nil {
		h.logger.Error("failed to process job update",
			zap.String("job_id", payload.ID),
			zap.Error(err))
		// Unknown jobs are not retried by the sender
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ignored"})
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}
