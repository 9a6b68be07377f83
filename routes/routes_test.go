package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const testPassword = "organizer-pass"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conn, err := db.Connect(db.DriverSQLite, "file:routes_"+t.Name()+"?mode=memory&_foreign_keys=on", time.Second)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := db.Migrate(conn, db.DriverSQLite); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	tournamentService := services.NewTournamentService(
		conn,
		repositories.NewPlayerRepository(conn),
		repositories.NewMatchRepository(conn),
		brackets.NewSwissGenerator(brackets.OddPolicyError),
		services.NewSnapshotPublisher(hub, nil, logger),
		logger,
	)
	t.Cleanup(func() {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFlush()
		tournamentService.Flush(flushCtx)
	})

	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	secret := "routes-secret"
	authService := services.NewAuthService(hash, secret, time.Hour)

	router := chi.NewRouter()
	SetupRoutes(
		router,
		Options{JWTSecret: []byte(secret), Logger: logger},
		handlers.NewAuthHandler(authService),
		handlers.NewPlayerHandler(tournamentService),
		handlers.NewMatchHandler(tournamentService),
		handlers.NewStandingsHandler(tournamentService),
		handlers.NewWebSocketHandler(hub, tournamentService, nil, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestTournamentOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	if code := call(t, srv, http.MethodPost, "/api/players", "", `{"name":"A"}`, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous register status = %d; want 401", code)
	}
	if code := call(t, srv, http.MethodPost, "/api/auth/token", "", `{"password":"wrong"}`, nil); code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d; want 401", code)
	}

	var tok services.TokenResult
	if code := call(t, srv, http.MethodPost, "/api/auth/token", "", `{"password":"`+testPassword+`"}`, &tok); code != http.StatusOK {
		t.Fatalf("token status = %d", code)
	}

	ids := map[string]int{}
	for _, name := range []string{"A", "B", "C", "D"} {
		var p models.Player
		if code := call(t, srv, http.MethodPost, "/api/players", tok.Token, `{"name":"`+name+`"}`, &p); code != http.StatusCreated {
			t.Fatalf("register %s status = %d", name, code)
		}
		ids[name] = p.ID
	}

	for _, m := range [][2]string{{"A", "B"}, {"C", "D"}, {"A", "C"}} {
		body, _ := json.Marshal(services.ReportMatchInput{WinnerID: ids[m[0]], LoserID: ids[m[1]]})
		if code := call(t, srv, http.MethodPost, "/api/matches", tok.Token, string(body), nil); code != http.StatusCreated {
			t.Fatalf("report %v status = %d", m, code)
		}
	}

	var standings []models.Standing
	if code := call(t, srv, http.MethodGet, "/api/standings", "", "", &standings); code != http.StatusOK {
		t.Fatalf("standings status = %d", code)
	}
	order := []string{"A", "C", "B", "D"}
	for i, name := range order {
		if standings[i].ID != ids[name] {
			t.Errorf("standings[%d] = %+v; want %s", i, standings[i], name)
		}
	}

	var pairings []models.Pairing
	if code := call(t, srv, http.MethodGet, "/api/pairings", "", "", &pairings); code != http.StatusOK {
		t.Fatalf("pairings status = %d", code)
	}
	if len(pairings) != 2 || pairings[0].Player1ID != ids["A"] || pairings[0].Player2ID != ids["C"] ||
		pairings[1].Player1ID != ids["B"] || pairings[1].Player2ID != ids["D"] {
		t.Errorf("pairings = %+v", pairings)
	}

	if code := call(t, srv, http.MethodDelete, "/api/players", tok.Token, "", nil); code != http.StatusConflict {
		t.Errorf("delete players with matches status = %d; want 409", code)
	}
	if code := call(t, srv, http.MethodDelete, "/api/matches", tok.Token, "", nil); code != http.StatusOK {
		t.Errorf("delete matches status = %d", code)
	}

	var extra models.Player
	call(t, srv, http.MethodPost, "/api/players", tok.Token, `{"name":"E"}`, &extra)
	if code := call(t, srv, http.MethodGet, "/api/pairings", "", "", nil); code != http.StatusConflict {
		t.Errorf("odd pairings status = %d; want 409", code)
	}

	var count map[string]int
	call(t, srv, http.MethodGet, "/api/players/count", "", "", &count)
	if count["count"] != 5 {
		t.Errorf("count = %v; want 5", count)
	}
}

func TestStandingsWebSocket(t *testing.T) {
	srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/standings"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Type    string               `json:"type"`
		Payload models.RoundSnapshot `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if msg.Type != brackets.MessageStandingsUpdated || msg.Payload.Reason != "connected" {
		t.Errorf("initial message = %+v", msg)
	}

	var tok services.TokenResult
	call(t, srv, http.MethodPost, "/api/auth/token", "", `{"password":"`+testPassword+`"}`, &tok)
	if code := call(t, srv, http.MethodPost, "/api/players", tok.Token, `{"name":"A"}`, nil); code != http.StatusCreated {
		t.Fatalf("register status = %d", code)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if msg.Payload.Reason != services.ReasonPlayerRegistered || len(msg.Payload.Standings) != 1 {
		t.Errorf("update message = %+v", msg)
	}
}

func TestSwaggerAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatalf("GET doc.json: %v", err)
	}
	defer resp.Body.Close()
	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if paths, ok := doc["paths"].(map[string]interface{}); !ok || paths["/standings"] == nil {
		t.Errorf("doc.json paths missing /standings")
	}

	if code := call(t, srv, http.MethodGet, "/health", "", "", nil); code != http.StatusOK {
		t.Errorf("health status = %d", code)
	}
}
