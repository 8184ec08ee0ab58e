package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/service"
	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound), errors.Is(err, aggregate.ErrUnknownStatistic):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, tabular.ErrColumnNotFound):
		return http.StatusBadRequest
	case errors.Is(err, tabular.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrNotIndexed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
