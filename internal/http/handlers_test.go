package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/vinser/marsrover/internal/fleet"
	"github.com/vinser/marsrover/internal/nav"
)

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func newTestRouter(t *testing.T, opts ...fleet.Option) (*mux.Router, *fleet.Fleet) {
	t.Helper()
	f := fleet.New(opts...)
	logger := zap.NewNop()
	return NewRouter(NewHandler(f, logger), logger, nil, time.Second), f
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// TestHandler_FullMission drives one rover through the RMMMLM mission over the API.
func TestHandler_FullMission(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, "POST", "/grids", `{"width":100,"height":100}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /grids status = %d, body %s", w.Code, w.Body)
	}
	var g fleet.GridInfo
	decode(t, w, &g)

	w = do(t, router, "POST", "/rovers", `{"gridId":"`+g.ID+`","x":5,"y":5,"direction":"N"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /rovers status = %d, body %s", w.Code, w.Body)
	}
	var r fleet.RoverInfo
	decode(t, w, &r)

	w = do(t, router, "POST", "/rovers/"+r.ID+"/commands", `{"commands":"RMMMLM"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST commands status = %d, body %s", w.Code, w.Body)
	}
	var after commandsResponse
	decode(t, w, &after)
	if after.Position() != (nav.Position{X: 8, Y: 6}) || after.Direction != nav.North {
		t.Errorf("after commands = %+v, want (8, 6) N", after.RoverInfo)
	}
	if len(after.Rejected) != 0 {
		t.Errorf("Rejected = %+v, want none", after.Rejected)
	}

	w = do(t, router, "GET", "/rovers/"+r.ID, "")
	var got fleet.RoverInfo
	decode(t, w, &got)
	if got != after.RoverInfo {
		t.Errorf("GET rover = %+v, want %+v", got, after.RoverInfo)
	}

	w = do(t, router, "GET", "/rovers", "")
	var list struct {
		Rovers []fleet.RoverInfo `json:"rovers"`
	}
	decode(t, w, &list)
	if len(list.Rovers) != 1 {
		t.Errorf("GET /rovers = %+v", list)
	}

	if w := do(t, router, "DELETE", "/rovers/"+r.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", w.Code)
	}
	if w := do(t, router, "GET", "/rovers/"+r.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("GET deleted rover status = %d", w.Code)
	}
}

func TestHandler_DefaultDirectionIsNorth(t *testing.T) {
	router, f := newTestRouter(t)
	g, _ := f.CreateGrid(10, 10)

	w := do(t, router, "POST", "/rovers", `{"gridId":"`+g.ID+`"}`)
	var r fleet.RoverInfo
	decode(t, w, &r)
	if r.Direction != nav.North || r.Position() != (nav.Position{}) {
		t.Errorf("launched rover = %+v, want (0, 0) N", r)
	}
}

func TestHandler_Errors(t *testing.T) {
	router, f := newTestRouter(t)
	g, _ := f.CreateGrid(10, 10)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"zero width grid", "POST", "/grids", `{"width":0,"height":5}`, http.StatusBadRequest, "INVALID_DIMENSIONS"},
		{"negative height grid", "POST", "/grids", `{"width":5,"height":-1}`, http.StatusBadRequest, "INVALID_DIMENSIONS"},
		{"malformed body", "POST", "/grids", `{"width":`, http.StatusBadRequest, "INVALID_BODY"},
		{"unknown field", "POST", "/grids", `{"w":1}`, http.StatusBadRequest, "INVALID_BODY"},
		{"missing grid", "GET", "/grids/nope", "", http.StatusNotFound, "GRID_NOT_FOUND"},
		{"launch on missing grid", "POST", "/rovers", `{"gridId":"nope"}`, http.StatusNotFound, "GRID_NOT_FOUND"},
		{"bad direction", "POST", "/rovers", `{"gridId":"` + g.ID + `","direction":"up"}`, http.StatusBadRequest, "INVALID_DIRECTION"},
		{"missing rover", "GET", "/rovers/nope", "", http.StatusNotFound, "ROVER_NOT_FOUND"},
		{"commands for missing rover", "POST", "/rovers/nope/commands", `{"commands":"M"}`, http.StatusNotFound, "ROVER_NOT_FOUND"},
		{"delete missing rover", "DELETE", "/rovers/nope", "", http.StatusNotFound, "ROVER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body)
			}
			var body errorBody
			decode(t, w, &body)
			if body.Error.Code != tt.wantErr {
				t.Errorf("error code = %q, want %q", body.Error.Code, tt.wantErr)
			}
			if body.Error.RequestID == "" {
				t.Error("requestId missing from error body")
			}
		})
	}
}

func TestHandler_OutOfBounds(t *testing.T) {
	router, f := newTestRouter(t, fleet.WithBoundsCheck(true))
	g, _ := f.CreateGrid(4, 4)

	w := do(t, router, "POST", "/rovers", `{"gridId":"`+g.ID+`","x":4,"y":0}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestHandler_IgnoresUnknownCommands(t *testing.T) {
	router, f := newTestRouter(t)
	g, _ := f.CreateGrid(10, 10)
	r, _ := f.Launch(g.ID, nav.Position{}, nav.North)

	w := do(t, router, "POST", "/rovers/"+r.ID+"/commands", `{"commands":"MXM"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp commandsResponse
	decode(t, w, &resp)
	if resp.Position() != (nav.Position{X: 0, Y: 2}) || len(resp.Rejected) != 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandler_StrictRejectsUnknownCommands(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	f := fleet.New(fleet.WithStrict(true))
	router := NewRouter(NewHandler(f, logger), logger, nil, time.Second)
	g, _ := f.CreateGrid(10, 10)
	r, _ := f.Launch(g.ID, nav.Position{}, nav.North)

	w := do(t, router, "POST", "/rovers/"+r.ID+"/commands", `{"commands":"MxRM"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp commandsResponse
	decode(t, w, &resp)
	if len(resp.Rejected) != 1 || resp.Rejected[0] != (rejectedCommand{Index: 1, Char: "x"}) {
		t.Errorf("Rejected = %+v", resp.Rejected)
	}
	if resp.Position() != (nav.Position{X: 1, Y: 1}) || resp.Direction != nav.East {
		t.Errorf("state = %+v, want (1, 1) E", resp.RoverInfo)
	}
	if logs.FilterMessage("unknown commands rejected").Len() != 1 {
		t.Error("expected one 'unknown commands rejected' log entry")
	}
}

func TestHandler_Health(t *testing.T) {
	router, _ := newTestRouter(t)
	w := do(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "healthy" || body["service"] != "roverd" {
		t.Errorf("health body = %v", body)
	}
}

func TestMiddleware_CorrelationIDPropagated(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest("GET", "/grids/nope", nil)
	req.Header.Set("X-Correlation-ID", "mission-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "mission-42" {
		t.Errorf("X-Correlation-ID = %q, want mission-42", got)
	}
	var body errorBody
	decode(t, w, &body)
	if body.Error.RequestID != "mission-42" {
		t.Errorf("requestId = %q, want mission-42", body.Error.RequestID)
	}
}

func TestMiddleware_RateLimit(t *testing.T) {
	f := fleet.New()
	logger := zap.NewNop()
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	router := NewRouter(NewHandler(f, logger), logger, limiter, time.Second)

	if w := do(t, router, "GET", "/rovers", ""); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := do(t, router, "GET", "/rovers", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	var body errorBody
	decode(t, w, &body)
	if body.Error.Code != "RATE_LIMITED" {
		t.Errorf("error code = %q", body.Error.Code)
	}
	// Health and metrics are outside the limited subrouter.
	if w := do(t, router, "GET", "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health status under rate limit = %d", w.Code)
	}
}

func TestGetRoute_UsesTemplate(t *testing.T) {
	router := mux.NewRouter()
	var got string
	router.HandleFunc("/rovers/{id}/commands", func(w http.ResponseWriter, r *http.Request) {
		got = getRoute(r)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/rovers/abc/commands", nil))
	if got != "/rovers/{id}/commands" {
		t.Errorf("getRoute() = %q", got)
	}
}
