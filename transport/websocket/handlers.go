package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tycoon-backend/internal/apperror"
)

// UpdateCurrentGame pushes a fresh snapshot of the game to its observers. It returns at once;
// failures are logged.
func (that *Server) UpdateCurrentGame(ctx context.Context, gameID int64) {
	ctx = context.WithoutCancel(ctx)

	that.pending.Add(1)
	go func() {
		defer that.pending.Done()

		if err := that.broadcastSnapshot(ctx, gameID); err != nil {
			that.logger.Error("failed to update observers", "method", "UpdateCurrentGame", "gameID", gameID, "error", err)
		}
	}()
}

func (that *Server) broadcastSnapshot(ctx context.Context, gameID int64) error {
	overview, err := that.snapshotter.Snapshot(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	data, err := newMessage(actionGameUpdate, overview)
	if err != nil {
		return err
	}

	that.broadcast(gameID, data)

	return nil
}

func (that *Server) broadcast(gameID int64, data []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.clients[gameID] {
		if !c.enqueue(data) {
			that.logger.Warn("observer too slow, dropping", "clientID", c.id, "gameID", gameID)
			that.removeLocked(c)
		}
	}
}

func (that *Server) handleSync(c *client, _ *Message) error {
	overview, err := that.snapshotter.Snapshot(context.Background(), c.gameID)
	if err != nil {
		that.sendError(c, actionError, apperror.Messages(err)...)
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	data, err := newMessage(actionGameUpdate, overview)
	if err != nil {
		return err
	}

	that.deliver(c, data)

	return nil
}

// deliver queues data for a single client that may have been dropped meanwhile.
func (that *Server) deliver(c *client, data []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[c.gameID][c]; !ok {
		return
	}

	if !c.enqueue(data) {
		that.removeLocked(c)
	}
}
