// Package server exposes the HTTP surface of the chat service: the WebSocket
// upgrade, history and login endpoints, image uploads, and static assets.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"

	"github.com/parlorchat/parlor/internal/chat"
)

// App is the composition root's view of the chat service: every handler hangs
// off it, and every collaborator is injected through NewApp. Nothing in this
// package reaches for ambient globals.
type App struct {
	cfg             *Config
	hub             *Hub
	store           chat.Store
	presence        *chat.Presence
	roster          *chat.RosterLog
	accounts        *CredentialStore
	upgrader        websocket.Upgrader
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
}

// NewApp wires the chat core and its collaborators into an HTTP application.
// roster and accounts may be nil to disable the snapshot side-table and the
// login gate respectively.
func NewApp(cfg *Config, hub *Hub, store chat.Store, presence *chat.Presence, roster *chat.RosterLog, accounts *CredentialStore) *App {
	origins, allowAll := normalizeOrigins(cfg.AllowedOrigins)

	a := &App{
		cfg:             cfg,
		hub:             hub,
		store:           store,
		presence:        presence,
		roster:          roster,
		accounts:        accounts,
		allowedOrigins:  origins,
		allowAllOrigins: allowAll,
	}
	a.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.checkOrigin,
	}
	return a
}

// WebSocketHandler upgrades the connection, assigns it a fresh connection id,
// and registers the client with the hub, which launches the read/write pumps.
func (a *App) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	connID := xid.New().String()
	session := NewSession(connID, a.hub, a.store, a.presence, a.roster)
	client := NewClient(conn, a.hub, session, connID, r.RemoteAddr, a.cfg.MaxMessageSize)

	a.hub.register <- client
}

// HistoryHandler serves the most recent messages from the log in append
// order, capped at the history limit regardless of the retention cap.
func (a *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	messages := a.store.Recent(chat.HistoryLimit)
	if messages == nil {
		messages = []*chat.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messages); err != nil {
		log.Printf("Error encoding history response: %v", err)
	}
}

// loginRequest is the body of a login attempt.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the body of every login reply.
type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginHandler verifies a username/password pair against the credential
// store. The chat session lifecycle does not depend on it; joins carry no
// password.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLoginResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeLoginResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if a.accounts == nil || !a.accounts.Verify(req.Username, req.Password) {
		writeLoginResponse(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	writeLoginResponse(w, http.StatusOK, "login successful")
}

func writeLoginResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := loginResponse{Success: status == http.StatusOK, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding login response: %v", err)
	}
}

// HealthHandler provides a simple health check endpoint.
func (a *App) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Parlor chat server is running!")
}
