// Package server wires HTTP handlers into a ServeMux for the Parlor chat
// application via routing helpers.
package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application routes:
// the WebSocket endpoint, the REST endpoints, uploaded images, and the static
// front-end.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.HealthHandler)
	mux.HandleFunc("/ws", a.WebSocketHandler)
	mux.HandleFunc("/api/messages", a.HistoryHandler)
	mux.HandleFunc("/api/login", a.LoginHandler)
	mux.HandleFunc("/api/upload", a.UploadHandler)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.cfg.UploadsDir))))
	mux.Handle("/", http.FileServer(http.Dir(a.cfg.PublicDir)))
	return mux
}
