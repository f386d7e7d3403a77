package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/violetbot/rpgengine/internal/config"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/engine"
	"github.com/violetbot/rpgengine/internal/testutil"
)

const testAdminSecret = "s3cret"

func setupGateway(t *testing.T) *httptest.Server {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	players := db.NewPlayerRepository(pool)
	fables := db.NewFableRepository(pool)
	eng := engine.New(players, fables, config.Default().Game)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing admin secret: %v", err)
	}
	gw := NewServer(eng, string(hash))

	srv := httptest.NewServer(http.HandlerFunc(gw.handleWS))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("writing %q: %v", msg, err)
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading reply to %q: %v", msg, err)
	}
	return string(reply)
}

func TestGateway_Handshake(t *testing.T) {
	srv := setupGateway(t)
	conn := dialWS(t, srv)

	if got := send(t, conn, "hello u1"); got != "hello u1" {
		t.Errorf("handshake reply = %q, want echo", got)
	}
}

func TestGateway_BadHandshake(t *testing.T) {
	srv := setupGateway(t)
	conn := dialWS(t, srv)

	if got := send(t, conn, "yo"); !strings.Contains(got, "expected: hello") {
		t.Errorf("reply = %q, want handshake usage hint", got)
	}
	// The server drops the connection after a bad handshake.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("profile")); err == nil {
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Error("connection still alive after bad handshake")
		}
	}
}

func TestGateway_CommandFlow(t *testing.T) {
	srv := setupGateway(t)
	conn := dialWS(t, srv)
	send(t, conn, "hello u1")

	if got := send(t, conn, "profile"); !strings.Contains(got, "not registered") {
		t.Errorf("profile before register = %q", got)
	}

	if got := send(t, conn, "register Alice f"); !strings.Contains(got, "welcome") {
		t.Errorf("register reply = %q", got)
	}
	if got := send(t, conn, "profile"); !strings.Contains(got, "Alice") {
		t.Errorf("profile reply = %q", got)
	}

	if got := send(t, conn, "hunt slime"); !strings.Contains(got, "appears") {
		t.Errorf("hunt reply = %q", got)
	}
	if got := send(t, conn, "status"); !strings.Contains(got, "fighting") {
		t.Errorf("status reply = %q", got)
	}
	if got := send(t, conn, "hunt bat"); !strings.Contains(got, "active hunt") {
		t.Errorf("double hunt reply = %q", got)
	}

	if got := send(t, conn, "fable"); !strings.Contains(got, "The Lost Coin") {
		t.Errorf("fable list reply = %q", got)
	}
}

func TestGateway_AdminAuth(t *testing.T) {
	srv := setupGateway(t)
	conn := dialWS(t, srv)
	send(t, conn, "hello op")
	send(t, conn, "register Op m")

	if got := send(t, conn, "admin wrong set op coins=100"); !strings.Contains(got, "authentication failed") {
		t.Errorf("bad secret reply = %q", got)
	}
	if got := send(t, conn, "admin "+testAdminSecret+" set op coins=100"); !strings.Contains(got, "100 coins") {
		t.Errorf("admin set reply = %q", got)
	}
	if got := send(t, conn, "admin "+testAdminSecret+" set op power=9001"); !strings.Contains(got, "unknown field") {
		t.Errorf("bad field reply = %q", got)
	}
}
