package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vinser/marsrover/internal/fleet"
	"github.com/vinser/marsrover/internal/grid"
	"github.com/vinser/marsrover/internal/nav"
	"github.com/vinser/marsrover/internal/rover"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	fleet  *fleet.Fleet
	logger *zap.Logger
}

// NewHandler returns a new Handler.
func NewHandler(f *fleet.Fleet, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{fleet: f, logger: logger}
}

type createGridRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type launchRequest struct {
	GridID    string         `json:"gridId"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Direction *nav.Direction `json:"direction"`
}

type commandsRequest struct {
	Commands string `json:"commands"`
}

type rejectedCommand struct {
	Index int    `json:"index"`
	Char  string `json:"char"`
}

type commandsResponse struct {
	fleet.RoverInfo
	Rejected []rejectedCommand `json:"rejected,omitempty"`
}

// CreateGrid handles POST /grids.
func (h *Handler) CreateGrid(w http.ResponseWriter, r *http.Request) {
	var req createGridRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.fleet.CreateGrid(req.Width, req.Height)
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// GetGrid handles GET /grids/{id}.
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	info, err := h.fleet.Grid(mux.Vars(r)["id"])
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// LaunchRover handles POST /rovers.
func (h *Handler) LaunchRover(w http.ResponseWriter, r *http.Request) {
	var req launchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dir := nav.North
	if req.Direction != nil {
		dir = *req.Direction
	}
	info, err := h.fleet.Launch(req.GridID, nav.Position{X: req.X, Y: req.Y}, dir)
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ListRovers handles GET /rovers.
func (h *Handler) ListRovers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"rovers": h.fleet.Rovers()})
}

// GetRover handles GET /rovers/{id}.
func (h *Handler) GetRover(w http.ResponseWriter, r *http.Request) {
	info, err := h.fleet.Rover(mux.Vars(r)["id"])
	if err != nil {
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DeleteRover handles DELETE /rovers/{id}.
func (h *Handler) DeleteRover(w http.ResponseWriter, r *http.Request) {
	if err := h.fleet.Remove(mux.Vars(r)["id"]); err != nil {
		writeFleetError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteCommands handles POST /rovers/{id}/commands. Unknown characters
// rejected in strict mode are listed in the response; the rover state still
// reflects every recognised command.
func (h *Handler) ExecuteCommands(w http.ResponseWriter, r *http.Request) {
	var req commandsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	info, err := h.fleet.Execute(r.Context(), mux.Vars(r)["id"], req.Commands)
	resp := commandsResponse{RoverInfo: info}

	var uce *rover.UnknownCommandsError
	switch {
	case errors.As(err, &uce):
		for _, rj := range uce.Rejected {
			resp.Rejected = append(resp.Rejected, rejectedCommand{Index: rj.Index, Char: string(rj.Char)})
		}
		loggerFrom(r).Info("unknown commands rejected", zap.String("rover_id", info.ID), zap.Int("count", len(uce.Rejected)))
	case err != nil:
		writeFleetError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "roverd",
		"rovers":    len(h.fleet.Rovers()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, nav.ErrUnknownDirection) {
			writeError(w, r, http.StatusBadRequest, "INVALID_DIRECTION", err.Error())
			return false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message and the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": correlationID(r),
		},
	})
}

// writeFleetError maps fleet and core errors onto HTTP responses.
func writeFleetError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, grid.ErrInvalidDimensions):
		writeError(w, r, http.StatusBadRequest, "INVALID_DIMENSIONS", err.Error())
	case errors.Is(err, nav.ErrUnknownDirection):
		writeError(w, r, http.StatusBadRequest, "INVALID_DIRECTION", err.Error())
	case errors.Is(err, rover.ErrOutOfBounds):
		writeError(w, r, http.StatusUnprocessableEntity, "OUT_OF_BOUNDS", err.Error())
	case errors.Is(err, fleet.ErrGridNotFound):
		writeError(w, r, http.StatusNotFound, "GRID_NOT_FOUND", err.Error())
	case errors.Is(err, fleet.ErrRoverNotFound):
		writeError(w, r, http.StatusNotFound, "ROVER_NOT_FOUND", err.Error())
	default:
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Unable to process request")
		loggerFrom(r).Debug("request failed", zap.Error(err))
	}
}
