package errors

// ErrorCode identifies an application error category on the wire.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_FORBIDDEN

	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_AUTH_INVALID_CREDENTIALS
	ErrorCode_AUTH_USER_NOT_FOUND
	ErrorCode_AUTH_USER_ALREADY_EXISTS
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN
	ErrorCode_AUTH_OAUTH_FAILED

	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_MEETING_ALREADY_EXISTS
	ErrorCode_MEETING_FULL
	ErrorCode_MEETING_CLOSED
	ErrorCode_MEETING_ACCESS_DENIED
	ErrorCode_MEETING_CREATION_FAILED
	ErrorCode_MEETING_INVALID_STATE

	ErrorCode_RECORDING_NOT_FOUND
	ErrorCode_RECORDING_START_FAILED
	ErrorCode_RECORDING_STOP_FAILED
	ErrorCode_RECORDING_UPLOAD_FAILED
	ErrorCode_RECORDING_DOWNLOAD_FAILED

	ErrorCode_ANALYSIS_NOT_FOUND
	ErrorCode_ANALYSIS_FAILED
	ErrorCode_ANALYSIS_UNPARSABLE_ANNOTATIONS
	ErrorCode_ANALYSIS_OVERSIZED_VIDEO
	ErrorCode_ANALYSIS_UNPLAYABLE_VIDEO
	ErrorCode_ANALYSIS_TRANSCRIPTION_FAILED
	ErrorCode_ANALYSIS_SERVICE_UNAVAILABLE

	ErrorCode_PLAYER_SESSION_NOT_FOUND
	ErrorCode_PLAYER_UNKNOWN_KIND

	ErrorCode_INTEGRATION_LIVEKIT_FAILED
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED

	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED
	ErrorCode_DB_CONSTRAINT_VIOLATION

	ErrorCode_INVALID_PAYLOAD
	ErrorCode_INVALID_SIGNATURE
	ErrorCode_HTTP_OK
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:           "UNKNOWN",
	ErrorCode_INTERNAL:          "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:  "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:         "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:    "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED: "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:   "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:         "FORBIDDEN",

	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:   "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_USER_NOT_FOUND:        "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_USER_ALREADY_EXISTS:   "AUTH_USER_ALREADY_EXISTS",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN: "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_AUTH_OAUTH_FAILED:          "AUTH_OAUTH_FAILED",

	ErrorCode_MEETING_NOT_FOUND:       "MEETING_NOT_FOUND",
	ErrorCode_MEETING_ALREADY_EXISTS:  "MEETING_ALREADY_EXISTS",
	ErrorCode_MEETING_FULL:            "MEETING_FULL",
	ErrorCode_MEETING_CLOSED:          "MEETING_CLOSED",
	ErrorCode_MEETING_ACCESS_DENIED:   "MEETING_ACCESS_DENIED",
	ErrorCode_MEETING_CREATION_FAILED: "MEETING_CREATION_FAILED",
	ErrorCode_MEETING_INVALID_STATE:   "MEETING_INVALID_STATE",

	ErrorCode_RECORDING_NOT_FOUND:       "RECORDING_NOT_FOUND",
	ErrorCode_RECORDING_START_FAILED:    "RECORDING_START_FAILED",
	ErrorCode_RECORDING_STOP_FAILED:     "RECORDING_STOP_FAILED",
	ErrorCode_RECORDING_UPLOAD_FAILED:   "RECORDING_UPLOAD_FAILED",
	ErrorCode_RECORDING_DOWNLOAD_FAILED: "RECORDING_DOWNLOAD_FAILED",

	ErrorCode_ANALYSIS_NOT_FOUND:              "ANALYSIS_NOT_FOUND",
	ErrorCode_ANALYSIS_FAILED:                 "ANALYSIS_FAILED",
	ErrorCode_ANALYSIS_UNPARSABLE_ANNOTATIONS: "ANALYSIS_UNPARSABLE_ANNOTATIONS",
	ErrorCode_ANALYSIS_OVERSIZED_VIDEO:        "ANALYSIS_OVERSIZED_VIDEO",
	ErrorCode_ANALYSIS_UNPLAYABLE_VIDEO:       "ANALYSIS_UNPLAYABLE_VIDEO",
	ErrorCode_ANALYSIS_TRANSCRIPTION_FAILED:   "ANALYSIS_TRANSCRIPTION_FAILED",
	ErrorCode_ANALYSIS_SERVICE_UNAVAILABLE:    "ANALYSIS_SERVICE_UNAVAILABLE",

	ErrorCode_PLAYER_SESSION_NOT_FOUND: "PLAYER_SESSION_NOT_FOUND",
	ErrorCode_PLAYER_UNKNOWN_KIND:      "PLAYER_UNKNOWN_KIND",

	ErrorCode_INTEGRATION_LIVEKIT_FAILED:      "INTEGRATION_LIVEKIT_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",

	ErrorCode_DB_CONNECTION_FAILED:    "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:         "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:   "DB_TRANSACTION_FAILED",
	ErrorCode_DB_CONSTRAINT_VIOLATION: "DB_CONSTRAINT_VIOLATION",

	ErrorCode_INVALID_PAYLOAD:   "INVALID_PAYLOAD",
	ErrorCode_INVALID_SIGNATURE: "INVALID_SIGNATURE",
	ErrorCode_HTTP_OK:           "OK",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
