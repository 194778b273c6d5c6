package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	analysisDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/analysis"
	"github.com/call-manager-team/call-manager/internal/adapter/presenter"
	"github.com/call-manager-team/call-manager/internal/annotation"
	analysisUsecase "github.com/call-manager-team/call-manager/internal/usecase/analysis"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
)

// Annotation payloads arrive as raw JSON bodies; a hard cap keeps a
// single request from buffering unbounded input.
const maxAnnotationPayloadBytes = 32 << 20 // 32 MB

// Analysis handles annotation pipeline HTTP requests
type Analysis struct {
	analysisService analysisUsecase.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService analysisUsecase.Service) *Analysis {
	return &Analysis{
		analysisService: analysisService,
	}
}

// RegisterAnalysis handles POST /analyses
// @Summary      Register a video for annotation
// @Description  Registers a stored video and submits it to the annotation service
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.RegisterAnalysisRequest  true  "Analysis registration request"
// @Success      201      {object}  analysis.AnalysisResponse  "Analysis registered"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or oversized video"
// @Failure      401      {object}  map[string]interface{}  "User not authenticated"
// @Failure      409      {object}  map[string]interface{}  "Recording not ready for analysis"
// @Router       /analyses [post]
func (h *Analysis) RegisterAnalysis(c echo.Context) error {
	var req analysisDTO.RegisterAnalysisRequest
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

	input := analysisUsecase.RegisterAnalysisInput{
		UserID:         userID,
		VideoObjectKey: req.VideoObjectKey,
		VideoWidth:     req.VideoWidth,
		VideoHeight:    req.VideoHeight,
		VideoDuration:  req.VideoDuration,
	}

	if req.RecordingID != nil {
		recordingID, err := uuid.Parse(*req.RecordingID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid_recording_id",
				"message": "recording ID must be a valid UUID",
			})
		}
		input.RecordingID = &recordingID
	}

	a, err := h.analysisService.RegisterAnalysis(c.Request().Context(), input)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_register_analysis"
		switch {
		case errors.Is(err, usecaseErrors.ErrOversizedVideo):
			statusCode = http.StatusRequestEntityTooLarge
			errorCode = "oversized_video"
		case errors.Is(err, usecaseErrors.ErrRecordingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "recording_not_found"
		case errors.Is(err, usecaseErrors.ErrRecordingNotReady):
			statusCode = http.StatusConflict
			errorCode = "recording_not_ready"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToAnalysisResponse(a))
}

// StartTranscription handles POST /analyses/transcriptions
// @Summary      Transcribe a recording
// @Description  Creates an analysis whose document is synthesized from a speech transcript
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.StartTranscriptionRequest  true  "Transcription request"
// @Success      201      {object}  analysis.AnalysisResponse  "Transcription started"
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Failure      404      {object}  map[string]interface{}  "Recording not found"
// @Failure      409      {object}  map[string]interface{}  "Recording not ready"
// @Router       /analyses/transcriptions [post]
func (h *Analysis) StartTranscription(c echo.Context) error {
	var req analysisDTO.StartTranscriptionRequest
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

	recordingID, err := uuid.Parse(req.RecordingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_recording_id",
			"message": "recording ID must be a valid UUID",
		})
	}

	a, err := h.analysisService.StartTranscription(c.Request().Context(), userID, recordingID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "failed_to_start_transcription"
		switch {
		case errors.Is(err, usecaseErrors.ErrRecordingNotFound):
			statusCode = http.StatusNotFound
			errorCode = "recording_not_found"
		case errors.Is(err, usecaseErrors.ErrRecordingNotReady):
			statusCode = http.StatusConflict
			errorCode = "recording_not_ready"
		case errors.Is(err, usecaseErrors.ErrOversizedVideo):
			statusCode = http.StatusRequestEntityTooLarge
			errorCode = "oversized_video"
		}

		return c.JSON(statusCode, map[string]interface{}{
			"error":   errorCode,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, presenter.ToAnalysisResponse(a))
}

// IngestAnnotations handles POST /analyses/:id/annotations
// @Summary      Ingest an annotation document
// @Description  Ingests a directly uploaded annotation JSON payload into an existing analysis
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Analysis ID (UUID)"
// @Param        payload  body      object  true  "Raw annotation JSON"
// @Success      200      {object}  analysis.AnalysisResponse  "Document ingested"
// @Failure      400      {object}  map[string]interface{}  "Unparsable annotation payload"
// @Failure      403      {object}  map[string]interface{}  "Analysis owned by another user"
// @Failure      404      {object}  map[string]interface{}  "Analysis not found"
// @Router       /analyses/{id}/annotations [post]
func (h *Analysis) IngestAnnotations(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAnnotationPayloadBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": "failed to read annotation payload",
		})
	}

	a, err := h.analysisService.IngestAnnotations(c.Request().Context(), userID, analysisID, payload)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_ingest_annotations")
	}

	return c.JSON(http.StatusOK, presenter.ToAnalysisResponse(a))
}

// GetAnalysis handles GET /analyses/:id
// @Summary      Get analysis details
// @Description  Gets one analysis owned by the authenticated user
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID (UUID)"
// @Success      200  {object}  analysis.AnalysisResponse  "Analysis details"
// @Failure      404  {object}  map[string]interface{}  "Analysis not found"
// @Router       /analyses/{id} [get]
func (h *Analysis) GetAnalysis(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	a, err := h.analysisService.GetAnalysis(c.Request().Context(), userID, analysisID)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_get_analysis")
	}

	return c.JSON(http.StatusOK, presenter.ToAnalysisResponse(a))
}

// ListAnalyses handles GET /analyses
// @Summary      List analyses
// @Description  Lists the authenticated user's analyses, newest first
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number (default: 1)"
// @Param        page_size  query     int  false  "Items per page (default: 20)"
// @Success      200        {object}  analysis.AnalysisListResponse  "List of analyses"
// @Router       /analyses [get]
func (h *Analysis) ListAnalyses(c echo.Context) error {
	var req analysisDTO.ListAnalysesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	analyses, err := h.analysisService.ListAnalyses(c.Request().Context(), userID, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "failed_to_list_analyses",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, presenter.ToAnalysisListResponse(analyses, req.Page, req.PageSize))
}

// GetDocument handles GET /analyses/:id/document
// @Summary      Get the normalized annotation document
// @Description  Returns the full normalized document of a completed analysis
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Analysis ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Normalized document"
// @Failure      404  {object}  map[string]interface{}  "Analysis not found"
// @Failure      409  {object}  map[string]interface{}  "No document ingested yet"
// @Router       /analyses/{id}/document [get]
func (h *Analysis) GetDocument(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	doc, err := h.analysisService.GetDocument(c.Request().Context(), userID, analysisID)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_get_document")
	}

	return c.JSON(http.StatusOK, doc)
}

// GetView handles GET /analyses/:id/views/:kind
// @Summary      Get a kind's view list
// @Description  Renders one annotation kind's entities as a filtered, seekable list
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id              path      string  true   "Analysis ID (UUID)"
// @Param        kind            path      string  true   "Annotation kind (label/object/face/text/speech)"
// @Param        q               query     string  false  "Substring filter on descriptions"
// @Param        min_confidence  query     number  false  "Minimum confidence (0..1)"
// @Param        sort            query     string  false  "Sort order (time/confidence)"
// @Success      200  {object}  analysis.ViewListResponse  "View list"
// @Failure      400  {object}  map[string]interface{}  "Unknown annotation kind"
// @Router       /analyses/{id}/views/{kind} [get]
func (h *Analysis) GetView(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	var req analysisDTO.ViewRequest
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

	kind := c.Param("kind")
	filter := annotation.ViewFilter{
		Search:        req.Search,
		MinConfidence: req.MinConfidence,
		SortBy:        annotation.ViewSort(req.SortBy),
	}

	items, err := h.analysisService.Views(c.Request().Context(), userID, analysisID, kind, filter)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_get_view")
	}

	return c.JSON(http.StatusOK, presenter.ToViewListResponse(kind, items))
}

// GetTimeline handles GET /analyses/:id/timeline
// @Summary      Get the timeline summary
// @Description  Coalesces each detected kind into summary display segments
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Analysis ID (UUID)"
// @Param        strategy  query     string  false  "Coalescing strategy (greedy/sorted, default greedy)"
// @Success      200  {object}  analysis.TimelineResponse  "Per-kind display segments"
// @Failure      400  {object}  map[string]interface{}  "Unknown timeline strategy"
// @Router       /analyses/{id}/timeline [get]
func (h *Analysis) GetTimeline(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	strategy := c.QueryParam("strategy")

	tracks, err := h.analysisService.Timeline(c.Request().Context(), userID, analysisID, strategy)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_get_timeline")
	}

	if strategy == "" {
		strategy = string(annotation.StrategyGreedy)
	}

	return c.JSON(http.StatusOK, presenter.ToTimelineResponse(strategy, tracks))
}

// GetOverlay handles GET /analyses/:id/overlay
// @Summary      Get an overlay snapshot
// @Description  Computes the pixel-space boxes of one kind at an arbitrary playhead time
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Analysis ID (UUID)"
// @Param        t     query     number  true   "Playhead time in seconds"
// @Param        kind  query     string  false  "Annotation kind (default object)"
// @Param        mode  query     string  false  "Box estimation mode (nearest/interpolated)"
// @Success      200  {object}  analysis.OverlayResponse  "Overlay boxes"
// @Failure      400  {object}  map[string]interface{}  "Invalid playhead time or mode"
// @Router       /analyses/{id}/overlay [get]
func (h *Analysis) GetOverlay(c echo.Context) error {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_analysis_id",
			"message": "analysis ID must be a valid UUID",
		})
	}

	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "unauthorized",
			"message": "user not authenticated",
		})
	}

	seconds, err := strconv.ParseFloat(c.QueryParam("t"), 64)
	if err != nil || seconds < 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_time",
			"message": "t must be a non-negative number of seconds",
		})
	}

	kind := c.QueryParam("kind")
	mode := c.QueryParam("mode")

	boxes, err := h.analysisService.Overlay(c.Request().Context(), userID, analysisID, seconds, kind, mode)
	if err != nil {
		return h.mapAnalysisError(c, err, "failed_to_get_overlay")
	}

	if kind == "" {
		kind = string(annotation.KindObject)
	}
	if mode == "" {
		mode = "nearest"
	}

	return c.JSON(http.StatusOK, presenter.ToOverlayResponse(seconds, kind, mode, boxes))
}

// mapAnalysisError maps pipeline errors onto HTTP status codes
func (h *Analysis) mapAnalysisError(c echo.Context, err error, fallbackCode string) error {
	statusCode := http.StatusInternalServerError
	errorCode := fallbackCode

	switch {
	case errors.Is(err, usecaseErrors.ErrAnalysisNotFound):
		statusCode = http.StatusNotFound
		errorCode = "analysis_not_found"
	case errors.Is(err, usecaseErrors.ErrForbidden):
		statusCode = http.StatusForbidden
		errorCode = "forbidden"
	case errors.Is(err, usecaseErrors.ErrUnparsableAnnotations):
		statusCode = http.StatusBadRequest
		errorCode = "unparsable_annotations"
	case errors.Is(err, usecaseErrors.ErrNoDocument):
		statusCode = http.StatusConflict
		errorCode = "no_document"
	case errors.Is(err, usecaseErrors.ErrUnknownKind):
		statusCode = http.StatusBadRequest
		errorCode = "unknown_kind"
	case errors.Is(err, usecaseErrors.ErrUnknownStrategy):
		statusCode = http.StatusBadRequest
		errorCode = "unknown_strategy"
	case errors.Is(err, usecaseErrors.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorCode = "invalid_input"
	}

	return c.JSON(statusCode, map[string]interface{}{
		"error":   errorCode,
		"message": err.Error(),
	})
}
