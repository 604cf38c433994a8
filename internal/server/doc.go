// Package server implements the transport and coordination layer of the
// Parlor chat service: the WebSocket hub and clients, the per-connection
// session coordinator, and the HTTP endpoints for history, login, image
// uploads, and static assets.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, sessions, routing, and HTTP handlers to keep the
// codebase maintainable and testable as the project grows.
package server
