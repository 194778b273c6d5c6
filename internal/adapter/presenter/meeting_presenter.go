package presenter

import (
	"encoding/json"

	"github.com/call-manager-team/call-manager/internal/adapter/dto/meeting"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	// Parse settings from JSONB
	var settings map[string]interface{}
	if m.Settings != nil {
		json.Unmarshal(m.Settings, &settings)
	}

	response := &meeting.MeetingResponse{
		ID:                  m.ID.String(),
		Name:                m.Name,
		Description:         m.Description,
		Slug:                m.Slug,
		HostID:              m.HostID.String(),
		Type:                string(m.Type),
		Status:              string(m.Status),
		LivekitRoomName:     m.LivekitRoomName,
		MaxParticipants:     m.MaxParticipants,
		CurrentParticipants: m.CurrentParticipants,
		Settings:            settings,
		ScheduledStartTime:  m.ScheduledStartTime,
		ScheduledEndTime:    m.ScheduledEndTime,
		StartedAt:           m.StartedAt,
		EndedAt:             m.EndedAt,
		Duration:            m.Duration,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}

	// Include host if loaded
	if m.Host != nil {
		response.Host = ToUserResponse(m.Host)
	}

	return response
}

// ToMeetingListResponse converts a slice of Meeting entities to MeetingListResponse
func ToMeetingListResponse(meetings []*entities.Meeting, total int64, page, pageSize int) *meeting.MeetingListResponse {
	meetingResponses := make([]*meeting.MeetingResponse, len(meetings))
	for i, m := range meetings {
		meetingResponses[i] = ToMeetingResponse(m)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &meeting.MeetingListResponse{
		Meetings:   meetingResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// ToParticipantResponse converts a Participant entity to ParticipantResponse DTO
func ToParticipantResponse(p *entities.Participant) *meeting.ParticipantResponse {
	if p == nil {
		return nil
	}

	response := &meeting.ParticipantResponse{
		ID:        p.ID.String(),
		MeetingID: p.MeetingID.String(),
		Role:      string(p.Role),
		Status:    string(p.Status),
		JoinedAt:  p.JoinedAt,
		LeftAt:    p.LeftAt,
		Duration:  p.Duration,
		CanRecord: p.CanRecord,
		CreatedAt: p.CreatedAt,
	}

	// UserID might be nil for invited participants
	if p.UserID != nil {
		response.UserID = p.UserID.String()
	}

	// Include user if loaded
	if p.User != nil {
		response.User = ToUserResponse(p.User)
	}

	return response
}

// ToParticipantListResponse converts a slice of Participant entities to ParticipantListResponse
func ToParticipantListResponse(participants []*entities.Participant) *meeting.ParticipantListResponse {
	participantResponses := make([]*meeting.ParticipantResponse, len(participants))
	for i, p := range participants {
		participantResponses[i] = ToParticipantResponse(p)
	}

	return &meeting.ParticipantListResponse{
		Participants: participantResponses,
		Total:        len(participants),
	}
}

// ToRecordingResponse converts a Recording entity to RecordingResponse DTO
func ToRecordingResponse(r *entities.Recording) *meeting.RecordingResponse {
	if r == nil {
		return nil
	}

	return &meeting.RecordingResponse{
		ID:          r.ID.String(),
		MeetingID:   r.MeetingID.String(),
		Status:      string(r.Status),
		FileURL:     r.FileURL,
		ObjectKey:   r.ObjectKey,
		FileSize:    r.FileSize,
		Duration:    r.Duration,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRecordingListResponse converts a slice of Recording entities to RecordingListResponse
func ToRecordingListResponse(recordings []*entities.Recording) *meeting.RecordingListResponse {
	recordingResponses := make([]*meeting.RecordingResponse, len(recordings))
	for i, r := range recordings {
		recordingResponses[i] = ToRecordingResponse(r)
	}

	return &meeting.RecordingListResponse{
		Recordings: recordingResponses,
		Total:      len(recordings),
	}
}
