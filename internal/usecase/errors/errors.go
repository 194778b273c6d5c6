package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// Meeting errors
var (
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrMeetingFull            = errors.New("meeting is full")
	ErrMeetingEnded           = errors.New("meeting has ended")
	ErrMeetingAlreadyStarted  = errors.New("meeting already started")
	ErrInvalidMeetingType     = errors.New("invalid meeting type")
	ErrInvalidMaxParticipants = errors.New("max participants must be between 2 and 100")
)

// Participant errors
var (
	ErrNotHost             = errors.New("user is not the host")
	ErrNotParticipant      = errors.New("user is not a participant")
	ErrAlreadyInMeeting    = errors.New("user already in meeting")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCannotRemoveSelf    = errors.New("cannot remove yourself")
)

// Recording errors
var (
	ErrRecordingNotFound   = errors.New("recording not found")
	ErrRecordingInProgress = errors.New("recording already in progress")
	ErrRecordingNotStarted = errors.New("recording not started")
	ErrRecordingNotReady   = errors.New("recording is not ready for analysis")
)

// Analysis errors
var (
	ErrAnalysisNotFound      = errors.New("analysis not found")
	ErrUnparsableAnnotations = errors.New("annotation payload is not parsable")
	ErrOversizedVideo        = errors.New("video exceeds the size limit")
	ErrNoDocument            = errors.New("no annotation document ingested yet")
	ErrUnknownKind           = errors.New("unknown annotation kind")
	ErrUnknownStrategy       = errors.New("unknown timeline strategy")
)

// Player errors
var (
	ErrPlayerSessionNotFound = errors.New("player session not found")
	ErrPlayerSessionClosed   = errors.New("player session closed")
	ErrFocusLimitExceeded    = errors.New("focus violation limit exceeded")
)

// LiveKit errors
var (
	ErrLivekitConnection = errors.New("failed to connect to LiveKit")
	ErrLivekitToken      = errors.New("failed to generate LiveKit token")
	ErrLivekitRoom       = errors.New("LiveKit room error")
)

// User errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNotActive    = errors.New("user is not active")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)
