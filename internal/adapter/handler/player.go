package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	playerDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/player"
	"github.com/call-manager-team/call-manager/internal/adapter/presenter"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	playerUsecase "github.com/call-manager-team/call-manager/internal/usecase/player"
)

// Player handles playback session HTTP requests
type Player struct {
	playerService playerUsecase.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService playerUsecase.Service) *Player {
	return &Player{
		playerService: playerService,
	}
}

// OpenSession handles POST /players
// @Summary      Open a playback session
// @Description  Binds an ingested analysis document to a server-side playback session
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      player.OpenSessionRequest  true  "Session open request"
// @Success      201      {object}  player.SessionResponse  "Session opened"
// @Failure      404      {object}  map[string]interface{}  "Analysis not found"
// @Failure      409      {object}  map[string]interface{}  "No document ingested yet"
// @Router       /players [post]
func (h *Player) OpenSession(c echo.Context) error {
	var req playerDTO.OpenSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	analysisID, err := uuid.Parse(req.AnalysisID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	state, err := h.playerService.Open(c.Request().Context(), userID, analysisID)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_open_session")
	}

	return c.JSON(http.StatusCreated, presenter.ToSessionResponse(state))
}

// UpdateTime handles POST /players/:id/time
// @Summary      Report the playhead position
// @Description  Records a playhead position report and returns the recomputed overlay
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID (UUID)"
// @Param        request  body      player.TimeUpdateRequest  true  "Playhead report"
// @Success      200      {object}  player.SessionResponse  "Session state"
// @Failure      404      {object}  map[string]interface{}  "Session not found"
// @Failure      423      {object}  map[string]interface{}  "Focus violation limit exceeded"
// @Router       /players/{id}/time [post]
func (h *Player) UpdateTime(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	var req playerDTO.TimeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	state, err := h.playerService.UpdateTime(c.Request().Context(), userID, sessionID, req.Time)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_update_time")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// Seek handles POST /players/:id/seek
// @Summary      Seek the playhead
// @Description  Moves the playhead to an absolute time and resumes playback
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID (UUID)"
// @Param        request  body      player.SeekRequest  true  "Seek target"
// @Success      200      {object}  player.SessionResponse  "Session state"
// @Failure      404      {object}  map[string]interface{}  "Session not found"
// @Router       /players/{id}/seek [post]
func (h *Player) Seek(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	var req playerDTO.SeekRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	state, err := h.playerService.Seek(c.Request().Context(), userID, sessionID, req.Time)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_seek")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// SetKind handles POST /players/:id/kind
// @Summary      Switch the overlay kind
// @Description  Switches the annotation kind driving the overlay and clears stale boxes
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID (UUID)"
// @Param        request  body      player.SetKindRequest  true  "Kind switch"
// @Success      200      {object}  player.SessionResponse  "Session state"
// @Failure      400      {object}  map[string]interface{}  "Unknown annotation kind"
// @Router       /players/{id}/kind [post]
func (h *Player) SetKind(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	var req playerDTO.SetKindRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	state, err := h.playerService.SetKind(c.Request().Context(), userID, sessionID, req.Kind)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_set_kind")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// SetMode handles POST /players/:id/mode
// @Summary      Switch the box estimation mode
// @Description  Switches between nearest-sample and interpolated box estimation
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID (UUID)"
// @Param        request  body      player.SetModeRequest  true  "Mode switch"
// @Success      200      {object}  player.SessionResponse  "Session state"
// @Failure      400      {object}  map[string]interface{}  "Invalid mode"
// @Router       /players/{id}/mode [post]
func (h *Player) SetMode(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	var req playerDTO.SetModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	state, err := h.playerService.SetMode(c.Request().Context(), userID, sessionID, req.Mode)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_set_mode")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// Pause handles POST /players/:id/pause
// @Summary      Pause playback
// @Description  Stops playback without moving the playhead
// @Tags         Players
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID (UUID)"
// @Success      200  {object}  player.SessionResponse  "Session state"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /players/{id}/pause [post]
func (h *Player) Pause(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	state, err := h.playerService.Pause(c.Request().Context(), userID, sessionID)
	if err != nil {
		return h.mapPlayerError(c, err, "failed_to_pause")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// RecordFocus handles POST /players/:id/focus
// @Summary      Report a window focus transition
// @Description  Applies a focus/blur transition and enforces the violation limit
// @Tags         Players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID (UUID)"
// @Param        request  body      player.FocusRequest  true  "Focus transition"
// @Success      200      {object}  player.SessionResponse  "Session state"
// @Failure      423      {object}  map[string]interface{}  "Focus violation limit exceeded"
// @Router       /players/{id}/focus [post]
func (h *Player) RecordFocus(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	var req playerDTO.FocusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	state, err := h.playerService.RecordFocus(c.Request().Context(), userID, sessionID, req.Focused)
	if err != nil {
		// The limit response still carries the final session state so the
		// client can render the terminal screen.
		if errors.Is(err, usecaseErrors.ErrFocusLimitExceeded) && state != nil {
			return c.JSON(http.StatusLocked, map[string]interface{}{
				"error":   "focus_limit_exceeded",
				"message": err.Error(),
				"session": presenter.ToSessionResponse(state),
			})
		}
		return h.mapPlayerError(c, err, "failed_to_record_focus")
	}

	return c.JSON(http.StatusOK, presenter.ToSessionResponse(state))
}

// CloseSession handles DELETE /players/:id
// @Summary      Close a playback session
// @Description  Discards a playback session
// @Tags         Players
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Session closed"
// @Failure      404  {object}  map[string]interface{}  "Session not found"
// @Router       /players/{id} [delete]
func (h *Player) CloseSession(c echo.Context) error {
	sessionID, userID, ok := h.sessionRequest(c)
	if !ok {
		return nil
	}

	if err := h.playerService.Close(c.Request().Context(), userID, sessionID); err != nil {
		return h.mapPlayerError(c, err, "failed_to_close_session")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "session closed",
	})
}

// sessionRequest extracts the session ID and authenticated user ID.
// On failure it writes the error response itself and reports !ok.
func (h *Player) sessionRequest(c echo.Context) (uuid.UUID, uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return sessionID, userID, true
}

// mapPlayerError maps playback session errors onto HTTP status codes
func (h *Player) mapPlayerError(c echo.Context, err error, fallbackCode string) error {
	statusCode := http.StatusInternalServerError
	errorCode := fallbackCode

	switch {
	case errors.Is(err, usecaseErrors.ErrPlayerSessionNotFound):
		statusCode = http.StatusNotFound
		errorCode = "session_not_found"
	case errors.Is(err, usecaseErrors.ErrPlayerSessionClosed):
		statusCode = http.StatusGone
		errorCode = "session_closed"
	case errors.Is(err, usecaseErrors.ErrFocusLimitExceeded):
		statusCode = http.StatusLocked
		errorCode = "focus_limit_exceeded"
	case errors.Is(err, usecaseErrors.ErrAnalysisNotFound):
		statusCode = http.StatusNotFound
		errorCode = "analysis_not_found"
	case errors.Is(err, usecaseErrors.ErrNoDocument):
		statusCode = http.StatusConflict
		errorCode = "no_document"
	case errors.Is(err, usecaseErrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorCode = "forbidden"
	case errors.Is(err, usecaseErrors.ErrUnknownKind):
		statusCode = http.StatusBadRequest
		errorCode = "unknown_kind"
	case errors.Is(err, usecaseErrors.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_input"
	}

	return c.JSON(statusCode, map[string]interface{}{
		"error":   errorCode,
		"message": err.Error(),
	})
}
