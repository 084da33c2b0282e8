package types

// CheckSessionResponse is returned by GET /check-session for a live session.
type CheckSessionResponse struct {
	SessionExist   bool              `json:"session_exist"`
	CompressResult *CompressResponse `json:"compress_result,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Running         bool `json:"running"`
	Sessions        int  `json:"sessions"`
	NotifyWSEnabled bool `json:"notify_ws_enabled"`
}
