package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetglass/fleetglass/internal/trackhub/core"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/pkg/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

type issueCommandRequest struct {
	Command    string            `json:"command"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

func (s *Server) handleSubmitTelemetry(w http.ResponseWriter, r *http.Request) {
	var payload service.TelemetryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := s.svc.SubmitTelemetry(r.Context(), &payload)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrStaleTimestamp):
			writeError(w, http.StatusConflict, err.Error())
		case core.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error(err, "Failed to ingest telemetry")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListStates())
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.GetState(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleVehicleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	samples, err := s.svc.RecentHistory(mux.Vars(r)["id"], limit)
	if err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (s *Server) handleIssueCommand(w http.ResponseWriter, r *http.Request) {
	var req issueCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command must not be empty")
		return
	}

	cmd, err := s.svc.IssueCommand(r.Context(), mux.Vars(r)["id"], req.Command, req.Parameters)
	if err != nil {
		log.Error(err, "Failed to issue command")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, cmd)
}

func (s *Server) handlePollCommand(w http.ResponseWriter, r *http.Request) {
	cmd, ok := s.svc.PollCommand(mux.Vars(r)["id"])
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
