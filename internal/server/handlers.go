package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/sanonone/beams/pkg/sim"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Runner.Frame())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Runner.Stats())
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "node id must be an integer")
		return
	}
	info, err := s.Runner.Node(id)
	if errors.Is(err, sim.ErrUnknownNode) {
		s.writeHTTPError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, info)
}

func (s *Server) handleGetOrientation(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, s.Runner.Angles())
}

// OrientationRequest sets the externally controlled angles, in radians.
type OrientationRequest struct {
	Roll *float64 `json:"roll"`
	Yaw  *float64 `json:"yaw"`
}

func (s *Server) handlePutOrientation(w http.ResponseWriter, r *http.Request) {
	var req OrientationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if !finite(req.Roll) || !finite(req.Yaw) {
		s.writeHTTPError(w, http.StatusBadRequest, "roll and yaw must be finite")
		return
	}

	// Missing angles keep their current value.
	s.writeHTTPResponse(w, http.StatusOK, s.Runner.UpdateOrientation(req.Roll, req.Yaw))
}

// finite reports whether v is absent or a finite number.
func finite(v *float64) bool {
	return v == nil || !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
