// Package websocket pushes game snapshots to subscribed observers.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tycoon-backend/internal/entity"
)

const (
	actionGameUpdate = "game:update"
	actionGameSync   = "game:sync"
	actionError      = "error"
)

type snapshotter interface {
	Snapshot(ctx context.Context, gameID int64) (*entity.GameOverview, error)
}

type Server struct {
	logger      *slog.Logger
	snapshotter snapshotter
	upgrader    websocket.Upgrader

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}

	pending sync.WaitGroup

	handlers map[string]func(c *client, message *Message) error
}

func New(logger *slog.Logger, snapshotter snapshotter) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		snapshotter: snapshotter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		clients: make(map[int64]map[*client]struct{}),
	}

	server.handlers = map[string]func(*client, *Message) error{
		actionGameSync: server.handleSync,
	}

	return server
}

// ServeHTTP subscribes the connection to the game named by the game_id query parameter.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	gameID, err := strconv.ParseInt(r.URL.Query().Get("game_id"), 10, 64)
	if err != nil || gameID <= 0 {
		http.Error(w, "game_id query parameter is required", http.StatusBadRequest)
		return
	}

	if _, err = that.snapshotter.Snapshot(r.Context(), gameID); err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "gameID", gameID, "error", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	that.register(c)
	log.Info("observer subscribed", "clientID", c.id, "gameID", gameID)

	go that.writePump(c)
	go that.readPump(c)

	that.UpdateCurrentGame(r.Context(), gameID)
}

// Subscribers returns the number of observers of the game.
func (that *Server) Subscribers(gameID int64) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[gameID])
}

// Wait blocks until every scheduled update has been delivered to the send queues.
func (that *Server) Wait() {
	that.pending.Wait()
}

// Close disconnects every observer.
func (that *Server) Close() {
	that.pending.Wait()

	that.mu.Lock()
	defer that.mu.Unlock()

	for gameID, clients := range that.clients {
		for c := range clients {
			close(c.send)
		}
		delete(that.clients, gameID)
	}
}

func (that *Server) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.clients[c.gameID]
	if !ok {
		clients = make(map[*client]struct{})
		that.clients[c.gameID] = clients
	}
	clients[c] = struct{}{}
}

func (that *Server) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)
}

// removeLocked must be called with mu held.
func (that *Server) removeLocked(c *client) {
	clients, ok := that.clients[c.gameID]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.clients, c.gameID)
	}

	that.logger.Info("observer unsubscribed", "clientID", c.id, "gameID", c.gameID)
}
