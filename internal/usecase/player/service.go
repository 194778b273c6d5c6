package player

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// AnalysisReader is the slice of the analysis pipeline a playback
// session needs: the analysis row for its video metadata and the
// ingested document.
type AnalysisReader interface {
	GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*entities.Analysis, error)
	GetDocument(ctx context.Context, userID, analysisID uuid.UUID) (*annotation.Document, error)
}

// SessionState is the authoritative view of a playback session returned
// after every operation: playhead, playback flag, active kind, the
// visible overlay boxes and the focus counters.
type SessionState struct {
	ID                uuid.UUID               `json:"id"`
	AnalysisID        uuid.UUID               `json:"analysis_id"`
	CurrentTime       float64                 `json:"current_time"`
	Playing           bool                    `json:"playing"`
	Kind              annotation.Kind         `json:"kind"`
	Boxes             []annotation.OverlayBox `json:"boxes"`
	FocusViolations   int                     `json:"focus_violations"`
	FocusLimitReached bool                    `json:"focus_limit_reached"`
}

// Service manages server-side playback sessions: each binds an ingested
// annotation document to a synchronizer that recomputes the overlay on
// every playhead move.
type Service interface {
	// Open creates a playback session over an ingested analysis
	Open(ctx context.Context, userID, analysisID uuid.UUID) (*SessionState, error)

	// UpdateTime records a playhead position report from the client
	UpdateTime(ctx context.Context, userID, sessionID uuid.UUID, seconds float64) (*SessionState, error)

	// Seek moves the playhead and resumes playback
	Seek(ctx context.Context, userID, sessionID uuid.UUID, seconds float64) (*SessionState, error)

	// SetKind switches the annotation kind driving the overlay
	SetKind(ctx context.Context, userID, sessionID uuid.UUID, kind string) (*SessionState, error)

	// SetMode switches how boxes are estimated between samples
	SetMode(ctx context.Context, userID, sessionID uuid.UUID, mode string) (*SessionState, error)

	// Pause stops playback without moving the playhead
	Pause(ctx context.Context, userID, sessionID uuid.UUID) (*SessionState, error)

	// RecordFocus applies a window focus transition and enforces the
	// violation limit
	RecordFocus(ctx context.Context, userID, sessionID uuid.UUID, focused bool) (*SessionState, error)

	// Close discards a session
	Close(ctx context.Context, userID, sessionID uuid.UUID) error

	// StartReaper starts the background sweep of idle sessions
	StartReaper(ctx context.Context) error

	// StopReaper stops the background sweep
	StopReaper() error
}
