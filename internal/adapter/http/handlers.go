package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/irrigation-advisor/internal/advisory"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string             `json:"error"`
	Kind  advisory.ErrorKind `json:"kind"`
}

type batchRequest struct {
	Requests []advisory.Request `json:"requests"`
}

type batchResponse struct {
	Results []advisory.BatchItem `json:"results"`
}

func (s *Server) handleParameters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.advisor.Parameters())
}

func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	var req advisory.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	event, err := s.advisor.Advise(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleAdviseBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	items, err := s.advisor.AdviseBatch(r.Context(), req.Requests)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: items})
}

// decodeJSON reads a single JSON object, rejecting unknown fields and
// trailing data. Decode failures wrap advisory.ErrInvalidRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %w", advisory.ErrInvalidRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", advisory.ErrInvalidRequest)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := advisory.Classify(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("advisory request failed", "kind", kind, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func statusFor(kind advisory.ErrorKind) int {
	switch kind {
	case advisory.KindInvalidRequest, advisory.KindConfiguration:
		return http.StatusBadRequest
	case advisory.KindDataFetch:
		return http.StatusBadGateway
	case advisory.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
