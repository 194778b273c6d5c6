package presenter

import (
	analysisDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/analysis"
	playerDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/player"
	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/usecase/player"
)

// ToAnalysisResponse converts an Analysis entity to AnalysisResponse DTO
func ToAnalysisResponse(a *entities.Analysis) *analysisDTO.AnalysisResponse {
	if a == nil {
		return nil
	}

	response := &analysisDTO.AnalysisResponse{
		ID:                  a.ID.String(),
		UserID:              a.UserID.String(),
		Status:              string(a.Status),
		Source:              string(a.Source),
		VideoObjectKey:      a.VideoObjectKey,
		VideoWidth:          a.VideoWidth,
		VideoHeight:         a.VideoHeight,
		VideoDuration:       a.VideoDuration,
		ExternalJobID:       a.ExternalJobID,
		AnnotationObjectKey: a.AnnotationObjectKey,
		Misaligned:          a.Misaligned,
		LastError:           a.LastError,
		StartedAt:           a.StartedAt,
		CompletedAt:         a.CompletedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}

	if a.RecordingID != nil {
		recordingID := a.RecordingID.String()
		response.RecordingID = &recordingID
	}

	return response
}

// ToAnalysisListResponse converts a slice of Analysis entities to AnalysisListResponse
func ToAnalysisListResponse(analyses []*entities.Analysis, page, pageSize int) *analysisDTO.AnalysisListResponse {
	analysisResponses := make([]*analysisDTO.AnalysisResponse, len(analyses))
	for i, a := range analyses {
		analysisResponses[i] = ToAnalysisResponse(a)
	}

	return &analysisDTO.AnalysisListResponse{
		Analyses: analysisResponses,
		Total:    len(analysisResponses),
		Page:     page,
		PageSize: pageSize,
	}
}

// ToViewListResponse wraps one kind's view items
func ToViewListResponse(kind string, items []annotation.ViewItem) *analysisDTO.ViewListResponse {
	if items == nil {
		items = []annotation.ViewItem{}
	}
	return &analysisDTO.ViewListResponse{
		Kind:  kind,
		Items: items,
		Total: len(items),
	}
}

// ToTimelineResponse flattens the per-kind segment map into string keys
func ToTimelineResponse(strategy string, tracks map[annotation.Kind][]annotation.DisplaySegment) *analysisDTO.TimelineResponse {
	out := make(map[string][]annotation.DisplaySegment, len(tracks))
	for kind, segments := range tracks {
		out[string(kind)] = segments
	}
	return &analysisDTO.TimelineResponse{
		Strategy: strategy,
		Tracks:   out,
	}
}

// ToOverlayBoxResponses converts overlay boxes to their DTO form
func ToOverlayBoxResponses(boxes []annotation.OverlayBox) []analysisDTO.OverlayBoxResponse {
	out := make([]analysisDTO.OverlayBoxResponse, len(boxes))
	for i, b := range boxes {
		out[i] = analysisDTO.OverlayBoxResponse{
			Description: b.Description,
			Confidence:  b.Confidence,
			Box:         b.Box,
		}
	}
	return out
}

// ToOverlayResponse converts an overlay snapshot to its DTO form
func ToOverlayResponse(seconds float64, kind, mode string, boxes []annotation.OverlayBox) *analysisDTO.OverlayResponse {
	return &analysisDTO.OverlayResponse{
		Time:  seconds,
		Kind:  kind,
		Mode:  mode,
		Boxes: ToOverlayBoxResponses(boxes),
	}
}

// ToSessionResponse converts a playback session state to its DTO form
func ToSessionResponse(state *player.SessionState) *playerDTO.SessionResponse {
	if state == nil {
		return nil
	}
	return &playerDTO.SessionResponse{
		ID:                state.ID.String(),
		AnalysisID:        state.AnalysisID.String(),
		CurrentTime:       state.CurrentTime,
		Playing:           state.Playing,
		Kind:              string(state.Kind),
		Boxes:             ToOverlayBoxResponses(state.Boxes),
		FocusViolations:   state.FocusViolations,
		FocusLimitReached: state.FocusLimitReached,
	}
}
