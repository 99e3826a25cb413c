package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/neonsnooker/internal/config"
	"github.com/playmatatu/neonsnooker/internal/game"
	"github.com/playmatatu/neonsnooker/internal/physics"
	"github.com/playmatatu/neonsnooker/internal/ws"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, maxSessions int) (*gin.Engine, *game.SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:       "test",
		FrameWidth:        800,
		FrameHeight:       400,
		TickRate:          60,
		SessionTTLMinutes: 60,
		JWTSecret:         "test-secret",
	}
	m := game.NewSessionManager(nil, nil, game.ManagerOptions{
		MaxSessions: maxSessions,
		NewWorld:    physics.Factory(nil),
	}, nil)
	t.Cleanup(func() { m.Shutdown(context.Background()) })

	r := gin.New()
	SetupRoutes(r, m, ws.NewHub(nil), cfg, zap.NewNop())
	return r, m
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type created struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	WSURL     string `json:"ws_url"`
}

func create(t *testing.T, r *gin.Engine, body string) created {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/sessions", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body)
	}
	var out created
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	r, m := newTestRouter(t, 0)

	s := create(t, r, `{"mode":3}`)
	if s.SessionID == "" || s.Token == "" {
		t.Fatalf("created = %+v", s)
	}
	if !strings.HasPrefix(s.WSURL, "ws://") || !strings.Contains(s.WSURL, s.SessionID+"/ws?token=") {
		t.Errorf("ws_url = %q", s.WSURL)
	}

	w := do(r, http.MethodGet, "/api/v1/sessions/"+s.SessionID, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	var snap game.Snapshot
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.SessionID != s.SessionID || snap.Mode != game.ModeRandomBalls {
		t.Errorf("snapshot = %s mode %v", snap.SessionID, snap.Mode)
	}

	if w := do(r, http.MethodPost, "/api/v1/sessions/"+s.SessionID+"/input", `{"type":"key","key":"t"}`, s.Token); w.Code != http.StatusAccepted {
		t.Errorf("input: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/v1/sessions/"+s.SessionID+"/input", `{"type":"dance"}`, s.Token); w.Code != http.StatusBadRequest {
		t.Errorf("bad input: status %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/v1/sessions/"+s.SessionID, "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("delete without token: status %d", w.Code)
	}
	other := create(t, r, "")
	if w := do(r, http.MethodDelete, "/api/v1/sessions/"+s.SessionID, "", other.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("delete with another session's token: status %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/sessions/"+s.SessionID, "", s.Token); w.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", w.Code)
	}
	if m.GetActiveSessionCount() != 1 {
		t.Errorf("active sessions = %d, want 1", m.GetActiveSessionCount())
	}
	if w := do(r, http.MethodGet, "/api/v1/sessions/"+s.SessionID, "", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/v1/sessions/"+s.SessionID, "", s.Token); w.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d", w.Code)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	r, _ := newTestRouter(t, 1)

	if w := do(r, http.MethodPost, "/api/v1/sessions", `{"mode":7}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/v1/sessions", `{mode`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad body: status %d", w.Code)
	}
	create(t, r, `{"mode":1}`)
	if w := do(r, http.MethodPost, "/api/v1/sessions", `{"mode":1}`, ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("full server: status %d", w.Code)
	}
}

func TestSummaryWithoutHistory(t *testing.T) {
	r, _ := newTestRouter(t, 0)
	s := create(t, r, "")
	if w := do(r, http.MethodGet, "/api/v1/sessions/"+s.SessionID+"/summary", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("summary: status %d", w.Code)
	}
}

func TestTableAndHealth(t *testing.T) {
	r, _ := newTestRouter(t, 0)

	w := do(r, http.MethodGet, "/api/v1/table?width=1600&height=800", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("table: status %d", w.Code)
	}
	var table game.Table
	json.Unmarshal(w.Body.Bytes(), &table)
	if table.FrameWidth != 1600 || len(table.Pockets) != 6 {
		t.Errorf("table frame %v with %d pockets", table.FrameWidth, len(table.Pockets))
	}
	if w := do(r, http.MethodGet, "/api/v1/table?width=abc", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad width: status %d", w.Code)
	}

	for _, path := range []string{"/health", "/api/v1/health", "/api/v1/config"} {
		if w := do(r, http.MethodGet, path, "", ""); w.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, w.Code)
		}
	}
}
