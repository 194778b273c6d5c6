package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/call-manager-team/call-manager/internal/adapter/dto/meeting"
	"github.com/call-manager-team/call-manager/internal/adapter/presenter"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	meetingUsecase "github.com/call-manager-team/call-manager/internal/usecase/meeting"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	meetingService meetingUsecase.Service
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService meetingUsecase.Service) *Meeting {
	return &Meeting{
		meetingService: meetingService,
	}
}

// CreateMeeting handles POST /meetings
// @Summary      Create a new meeting
// @Description  Creates a new meeting with a backing conference room
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.CreateMeetingRequest  true  "Meeting creation request"
// @Success      201      {object}  meeting.MeetingResponse  "Meeting created successfully"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or validation failed"
// @Failure      401      {object}  map[string]interface{}  "User not authenticated"
// @Failure      500      {object}  map[string]interface{}  "Failed to create meeting"
// @Router       /meetings [post]
func (h *Meeting) CreateMeeting(c echo.Context) error {
	var req meeting.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	// Validate request
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}

	// Get user ID from context (set by auth middleware)
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	// Parse meeting type
	var meetingType entities.MeetingType
	switch req.Type {
	case "public":
		meetingType = entities.MeetingTypePublic
	case "private":
		meetingType = entities.MeetingTypePrivate
	case "scheduled":
		meetingType = entities.MeetingTypeScheduled
	default:
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_type",
			"message": "meeting type must be public, private, or scheduled",
		})
	}

	input := meetingUsecase.CreateMeetingInput{
		Name:               req.Name,
		Description:        req.Description,
		HostID:             userID,
		Type:               meetingType,
		MaxParticipants:    req.MaxParticipants,
		Settings:           req.Settings,
		ScheduledStartTime: req.ScheduledStartTime,
		ScheduledEndTime:   req.ScheduledEndTime,
	}

	m, err := h.meetingService.CreateMeeting(c.Request().Context(), input)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_create_meeting"
		if errors.Is(err, usecaseErrors.ErrInvalidMaxParticipants) {
			statusCode = http.StatusBadRequest
			errorCode = "invalid_max_participants"
		}
		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToMeetingResponse(m))
}

// GetMeeting handles GET /meetings/:id
// @Summary      Get meeting details
// @Description  Gets detailed information about a specific meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.MeetingResponse  "Meeting details"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	m, err := h.meetingService.GetMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error":   "meeting_not_found",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToMeetingResponse(m))
}

// ListMeetings handles GET /meetings
// @Summary      List meetings
// @Description  Gets a paginated list of meetings with optional filters
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        page_size  query     int     false  "Items per page (default: 20)"
// @Param        type       query     string  false  "Meeting type filter (public/private/scheduled)"
// @Param        status     query     string  false  "Meeting status filter (scheduled/active/ended/cancelled)"
// @Param        search     query     string  false  "Search by meeting name"
// @Success      200        {object}  meeting.MeetingListResponse  "List of meetings"
// @Failure      400        {object}  map[string]interface{}  "Invalid request"
// @Failure      500        {object}  map[string]interface{}  "Failed to list meetings"
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	var req meeting.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	// Set defaults
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filters := buildMeetingFilters(&req)

	meetings, total, err := h.meetingService.ListMeetings(c.Request().Context(), filters)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_meetings",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToMeetingListResponse(meetings, total, req.Page, req.PageSize))
}

// JoinMeeting handles POST /meetings/:id/participants
// @Summary      Join a meeting
// @Description  Allows a user to join an existing meeting and get conference credentials
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.JoinMeetingResponse  "Successfully joined meeting with LiveKit credentials"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID or meeting is full"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      409  {object}  map[string]interface{}  "User already in meeting"
// @Failure      500  {object}  map[string]interface{}  "Failed to join meeting"
// @Router       /meetings/{id}/participants [post]
func (h *Meeting) JoinMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	user, ok := c.Get("user").(*entities.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	output, err := h.meetingService.JoinMeeting(c.Request().Context(), meetingID, user.ID, user.Name)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_join_meeting"

		// Map specific errors to HTTP status codes
		switch {
		case errors.Is(err, usecaseErrors.ErrMeetingFull):
			statusCode = http.StatusBadRequest
			errorCode = "meeting_full"
		case errors.Is(err, usecaseErrors.ErrAlreadyInMeeting):
			statusCode = http.StatusConflict
			errorCode = "already_in_meeting"
		case errors.Is(err, usecaseErrors.ErrMeetingEnded):
			statusCode = http.StatusBadRequest
			errorCode = "meeting_ended"
		case errors.Is(err, usecaseErrors.ErrMeetingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "meeting_not_found"
		case errors.Is(err, usecaseErrors.ErrLivekitToken):
			errorCode = "failed_to_generate_token"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	response := &meeting.JoinMeetingResponse{
		Meeting:      presenter.ToMeetingResponse(output.Meeting),
		Participant:  presenter.ToParticipantResponse(output.Participant),
		LivekitToken: output.Token,
		LivekitURL:   output.LivekitURL,
	}

	return c.JSON(http.StatusOK, response)
}

// LeaveMeeting handles DELETE /meetings/:id/participants/me
// @Summary      Leave a meeting
// @Description  Allows a user to leave a meeting they are currently in
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Successfully left the meeting"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      500  {object}  map[string]interface{}  "Failed to leave meeting"
// @Router       /meetings/{id}/participants/me [delete]
func (h *Meeting) LeaveMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	if err := h.meetingService.LeaveMeeting(c.Request().Context(), meetingID, userID); err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_leave_meeting"
		if errors.Is(err, usecaseErrors.ErrNotParticipant) {
			statusCode = http.StatusBadRequest
			errorCode = "not_participant"
		}
		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully left the meeting",
	})
}

// EndMeeting handles PATCH /meetings/:id
// @Summary      End a meeting
// @Description  Ends a meeting session (host only)
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Meeting ended successfully"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      401  {object}  map[string]interface{}  "User not authenticated"
// @Failure      403  {object}  map[string]interface{}  "User is not the host"
// @Failure      500  {object}  map[string]interface{}  "Failed to end meeting"
// @Router       /meetings/{id} [patch]
func (h *Meeting) EndMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	if err := h.meetingService.EndMeeting(c.Request().Context(), meetingID, userID); err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_end_meeting"
		switch {
		case errors.Is(err, usecaseErrors.ErrNotHost):
			statusCode = http.StatusForbidden
			errorCode = "not_host"
		case errors.Is(err, usecaseErrors.ErrMeetingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "meeting_not_found"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "meeting ended successfully",
	})
}

// DeleteMeeting handles DELETE /meetings/:id
// @Summary      Delete a meeting
// @Description  Deletes an ended meeting (host only)
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Meeting deleted successfully"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      403  {object}  map[string]interface{}  "User is not the host"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [delete]
func (h *Meeting) DeleteMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	if err := h.meetingService.DeleteMeeting(c.Request().Context(), meetingID, userID); err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_delete_meeting"
		switch {
		case errors.Is(err, usecaseErrors.ErrNotHost):
			statusCode = http.StatusForbidden
			errorCode = "not_host"
		case errors.Is(err, usecaseErrors.ErrMeetingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "meeting_not_found"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "meeting deleted successfully",
	})
}

// GetParticipants handles GET /meetings/:id/participants
// @Summary      Get meeting participants
// @Description  Gets a list of all participants in a meeting
// @Tags         Participants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.ParticipantListResponse  "List of participants"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      500  {object}  map[string]interface{}  "Failed to get participants"
// @Router       /meetings/{id}/participants [get]
func (h *Meeting) GetParticipants(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	participants, err := h.meetingService.GetParticipants(c.Request().Context(), meetingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_get_participants",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToParticipantListResponse(participants))
}

// StartRecording handles POST /meetings/:id/recordings
// @Summary      Start recording
// @Description  Starts a composite recording of the meeting (host only)
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      201  {object}  meeting.RecordingResponse  "Recording started"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      403  {object}  map[string]interface{}  "User is not the host"
// @Failure      409  {object}  map[string]interface{}  "Recording already in progress"
// @Router       /meetings/{id}/recordings [post]
func (h *Meeting) StartRecording(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	recording, err := h.meetingService.StartRecording(c.Request().Context(), meetingID, userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_start_recording"
		switch {
		case errors.Is(err, usecaseErrors.ErrNotHost):
			statusCode = http.StatusForbidden
			errorCode = "not_host"
		case errors.Is(err, usecaseErrors.ErrRecordingInProgress):
			statusCode = http.StatusConflict
			errorCode = "recording_in_progress"
		case errors.Is(err, usecaseErrors.ErrMeetingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "meeting_not_found"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToRecordingResponse(recording))
}

// StopRecording handles POST /recordings/:id/stop
// @Summary      Stop recording
// @Description  Stops an in-progress recording (host only)
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recording ID (UUID)"
// @Success      200  {object}  meeting.RecordingResponse  "Recording stopped"
// @Failure      400  {object}  map[string]interface{}  "Invalid recording ID"
// @Failure      403  {object}  map[string]interface{}  "User is not the host"
// @Failure      404  {object}  map[string]interface{}  "Recording not found"
// @Router       /recordings/{id}/stop [post]
func (h *Meeting) StopRecording(c echo.Context) error {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_recording_id",
			"message": "recording ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	recording, err := h.meetingService.StopRecording(c.Request().Context(), recordingID, userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_stop_recording"
		switch {
		case errors.Is(err, usecaseErrors.ErrNotHost):
			statusCode = http.StatusForbidden
			errorCode = "not_host"
		case errors.Is(err, usecaseErrors.ErrRecordingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "recording_not_found"
		case errors.Is(err, usecaseErrors.ErrRecordingNotStarted):
			statusCode = http.StatusBadRequest
			errorCode = "recording_not_started"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToRecordingResponse(recording))
}

// GetRecordings handles GET /meetings/:id/recordings
// @Summary      List meeting recordings
// @Description  Gets all recordings of a meeting
// @Tags         Recordings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  meeting.RecordingListResponse  "List of recordings"
// @Failure      400  {object}  map[string]interface{}  "Invalid meeting ID"
// @Failure      500  {object}  map[string]interface{}  "Failed to get recordings"
// @Router       /meetings/{id}/recordings [get]
func (h *Meeting) GetRecordings(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_meeting_id",
			"message": "meeting ID must be a valid UUID",
		})
	}

	recordings, err := h.meetingService.GetRecordings(c.Request().Context(), meetingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_get_recordings",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToRecordingListResponse(recordings))
}
