package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string        `json:"error"`
	Code  sgerrors.Code `json:"code,omitempty"`
}

// jsonDuration encodes as a Go duration string such as "1.2ms".
type jsonDuration time.Duration

func (d jsonDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: sgerrors.UserMessage(err), Code: sgerrors.GetCode(err)})
}

// statusOf maps an error to its HTTP status. Input problems are the
// client's, scene problems are unprocessable, and anything without a code
// is a server fault.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch sgerrors.GetCode(err) {
	case sgerrors.ErrCodeInvalidInput, sgerrors.ErrCodeInvalidMode, sgerrors.ErrCodeInvalidFormat, sgerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case sgerrors.ErrCodeNotFound, sgerrors.ErrCodeDuplicate, sgerrors.ErrCodeCycle:
		return http.StatusUnprocessableEntity
	case sgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, sgerrors.Wrap(sgerrors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

// logRequests logs one line per request once the response is written.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
