// Package server coordinates client registration, scoped event fan-out, and
// connection cleanup for the Parlor chat service via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// broadcastScope selects which connected sessions receive a payload.
type broadcastScope int

const (
	scopeAll broadcastScope = iota
	scopeAllExcept
	scopeOne
)

// outbound is one fan-out request queued on the hub's broadcast channel.
type outbound struct {
	scope   broadcastScope
	connID  string
	payload []byte
}

// Hub owns the set of connected clients and delivers outbound events to them.
// All membership changes and broadcasts flow through its Run loop, so two
// events submitted in sequence by one goroutine reach every common recipient
// in submission order. Delivery is best-effort per connection: a client whose
// send buffer is full is dropped rather than allowed to stall the others.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates a Hub ready to manage connections. Call Run in its own
// goroutine before registering clients.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan outbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// ToAll delivers payload to every connected session.
func (h *Hub) ToAll(payload []byte) {
	h.submit(outbound{scope: scopeAll, payload: payload})
}

// ToAllExcept delivers payload to every session other than connID.
func (h *Hub) ToAllExcept(connID string, payload []byte) {
	h.submit(outbound{scope: scopeAllExcept, connID: connID, payload: payload})
}

// ToOne delivers payload privately to the session identified by connID.
func (h *Hub) ToOne(connID string, payload []byte) {
	h.submit(outbound{scope: scopeOne, connID: connID, payload: payload})
}

// submit queues one fan-out request. Once shutdown has begun the event is
// dropped instead of blocking the submitting goroutine forever.
func (h *Hub) submit(out outbound) {
	select {
	case h.broadcast <- out:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main event loop, handling client registration,
// unregistration, and fan-out. It runs until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.id] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s connected from %s. Total clients: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if current, ok := h.clients[client.id]; ok && current == client {
				delete(h.clients, client.id)
				client.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				// Close the channel after releasing the lock.
				close(client.send)
				log.Printf("Client %s disconnected from %s. Total clients: %d", client.id, client.addr, clientCount)
			} else {
				h.mutex.Unlock()
			}

		case out := <-h.broadcast:
			h.handleBroadcast(out)
		}
	}
}

// handleBroadcast fans one outbound event out to the sessions its scope names.
func (h *Hub) handleBroadcast(out outbound) {
	clients := h.clientSnapshot()

	var clientsToRemove []*Client
	for _, client := range clients {
		switch out.scope {
		case scopeAllExcept:
			if client.id == out.connID {
				continue
			}
		case scopeOne:
			if client.id != out.connID {
				continue
			}
		}
		if !h.safeSend(client, out.payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}

	h.removeFailedClients(clientsToRemove)
}

// clientSnapshot returns a point-in-time copy of the connected client set.
func (h *Hub) clientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) safeSend(client *Client, payload []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send so unregistration cannot close the
	// channel mid-send.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	current, exists := h.clients[client.id]
	if !exists || current != client || client.closed {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// removeFailedClients drops clients whose send buffers were full and closes
// their channels.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if current, exists := h.clients[client.id]; exists && current == client {
			delete(h.clients, client.id)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			log.Printf("Client %s removed due to full send buffer", client.id)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock.
	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients closes all active client connections and their send
// channels so both pump goroutines can exit.
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		client.closed = true
		clients = append(clients, client)
	}
	h.clients = make(map[string]*Client)
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all client
// goroutines to complete, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()

	// Wait for Run() to drain and exit.
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
