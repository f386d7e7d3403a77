// Package gateway is the websocket command front. Each connection
// identifies its player with a "hello <id>" handshake, then sends
// plain-text commands; replies are relayed back verbatim on the same
// connection. The gateway owns no game state.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/violetbot/rpgengine/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the websocket command endpoint.
type Server struct {
	engine          *engine.Engine
	adminSecretHash string
}

// NewServer creates a gateway Server. An empty adminSecretHash
// disables admin verbs.
func NewServer(eng *engine.Engine, adminSecretHash string) *Server {
	return &Server{engine: eng, adminSecretHash: adminSecretHash}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("gateway listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down gateway: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway listen on %s: %w", addr, err)
		}
		return nil
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	playerID, err := handshake(conn)
	if err != nil {
		slog.Warn("handshake failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	slog.Info("player connected", "playerID", playerID, "remote", r.RemoteAddr)

	s.serve(r.Context(), conn, playerID)
	slog.Info("player disconnected", "playerID", playerID)
}

// handshake reads the first frame, which must be "hello <id>".
func handshake(conn *websocket.Conn) (string, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("reading handshake: %w", err)
	}
	fields := strings.Fields(string(msg))
	if len(fields) != 2 || !strings.EqualFold(fields[0], "hello") {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("expected: hello <player-id>"))
		return "", fmt.Errorf("bad handshake %q", string(msg))
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello "+fields[1])); err != nil {
		return "", fmt.Errorf("writing handshake reply: %w", err)
	}
	return fields[1], nil
}

// serve is the per-connection read/dispatch/reply loop. Replies are
// written from this single goroutine only.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, playerID string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("read failed", "playerID", playerID, "error", err)
			}
			return
		}

		reply := s.dispatch(ctx, playerID, strings.TrimSpace(string(msg)))
		if reply == "" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			slog.Warn("write failed", "playerID", playerID, "error", err)
			return
		}
	}
}
