package signal

import (
	"errors"

	"github.com/dkeye/Tracklist/internal/app/orch"
	"github.com/dkeye/Tracklist/internal/core"
	"github.com/dkeye/Tracklist/internal/domain"
)

// Error codes carried by the error event.
const (
	codeBadPayload         = "bad_payload"
	codeInvalidRequest     = "invalid_request"
	codeNotJoined          = "not_joined"
	codeStorageUnavailable = "storage_unavailable"
	codeRateLimited        = "rate_limited"
	codeUnknownType        = "unknown_type"
)

type errorEvent struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	Op        string `json:"op,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return codeInvalidRequest
	case errors.Is(err, domain.ErrNotJoined), errors.Is(err, orch.ErrNoSession):
		return codeNotJoined
	default:
		return codeStorageUnavailable
	}
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, op, code, requestID string) {
	ctl.sendJSON(c, errorEvent{Type: "error", Error: code, Op: op, RequestID: requestID})
}

func (ctl *SignalWSController) handlePing(c core.SignalConnection) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
