package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netforce/pkg/errors"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error to its HTTP status and public code.
func statusFor(err error) (int, errors.Code) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, errors.ErrCodeInternal
	}
	switch code := errors.GetCode(err); code {
	case errors.ErrCodeParse, errors.ErrCodeInvalidInput, errors.ErrCodeRankLookup,
		errors.ErrCodeDanglingEdge:
		return http.StatusBadRequest, code
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound, errors.ErrCodeNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented, code
	}
	return http.StatusInternalServerError, errors.ErrCodeInternal
}

// writeError logs err and writes the error envelope. Internal failures get a
// generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := publicMessage(err)
	reqID := chimiddleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", reqID, "error", err)
		msg = http.StatusText(status)
	} else {
		s.logger.Debug("request rejected", "request_id", reqID, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg, RequestID: reqID}})
}

// publicMessage is the user message of err including its direct cause, so a
// client sees which attribute or rank was at fault.
func publicMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
