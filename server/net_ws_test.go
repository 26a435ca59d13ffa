package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wordfight/game"
	"wordfight/protocol"
)

func startServer(t *testing.T, opts ServerOptions) (*httptest.Server, *World) {
	t.Helper()
	w := NewWorld(WorldOptions{ArenaSize: 3, TickRate: 50})
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx, 20*time.Millisecond)

	mux := http.NewServeMux()
	NewServer(w, opts).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, w
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// readUntil 读取直到出现满足条件的 state
func readUntil(t *testing.T, c *websocket.Conn, codec protocol.Codec, ok func(protocol.State) bool) protocol.State {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	_ = c.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, b, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := codec.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.T != protocol.MsgState {
			continue
		}
		st, err := protocol.DecodePayload[protocol.State](codec, env)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if ok(st) {
			return st
		}
	}
	t.Fatalf("condition not reached before deadline")
	return protocol.State{}
}

func inMatch(st protocol.State) bool { return st.Match != nil }

func sendAction(t *testing.T, c *websocket.Conn, codec protocol.Codec, msgType int, act protocol.Action) {
	t.Helper()
	b, err := codec.Encode(protocol.MsgAction, act)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteMessage(msgType, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocketDuel(t *testing.T) {
	srv, w := startServer(t, ServerOptions{InputRate: 100, InputBurst: 10, IdleTimeout: 5 * time.Second})
	a := dial(t, srv, "name=ann")
	b := dial(t, srv, "name=bob&codec=msgpack")

	sa := readUntil(t, a, protocol.JSON, inMatch)
	sb := readUntil(t, b, protocol.MsgPack, inMatch)
	if sa.Match.Opponent.Name != "bob" || sb.Match.Opponent.Name != "ann" {
		t.Fatalf("opponents: %q %q", sa.Match.Opponent.Name, sb.Match.Opponent.Name)
	}

	sendAction(t, a, protocol.JSON, websocket.TextMessage, protocol.Action{
		Kind: protocol.KindAppend, Letter: "c", Actor: sa.You.ID, Side: sa.You.Side, Match: sa.Match.ID,
	})
	got := readUntil(t, b, protocol.MsgPack, func(st protocol.State) bool { return st.Match != nil && st.Match.Opponent.Word == "C" })
	if got.You.Word != "" {
		t.Fatalf("bob word = %q", got.You.Word)
	}

	// 冒充对手的动作被静默丢弃
	sendAction(t, a, protocol.JSON, websocket.TextMessage, protocol.Action{
		Kind: protocol.KindAppend, Letter: "z", Actor: sa.Match.Opponent.ID, Side: sb.You.Side,
	})
	deadline := time.Now().Add(2 * time.Second)
	for w.Metrics().Snapshot()["unauthorized"] != int64(1) {
		if time.Now().After(deadline) {
			t.Fatalf("spoofed action not rejected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.Close()
	readUntil(t, a, protocol.JSON, func(st protocol.State) bool { return st.Match == nil })
}

func TestWebSocketRequiresToken(t *testing.T) {
	tokens, err := NewTokenIssuer("secret", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	srv, _ := startServer(t, ServerOptions{Tokens: tokens, RequireToken: true, InputRate: 10, InputBurst: 1})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=eve"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %v", resp)
	}

	raw, _, err := tokens.Issue("carol")
	if err != nil {
		t.Fatal(err)
	}
	c := dial(t, srv, "token="+raw)
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, b, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	env, _ := protocol.JSON.DecodeEnvelope(b)
	wel, err := protocol.DecodePayload[protocol.Welcome](protocol.JSON, env)
	if err != nil || env.T != protocol.MsgWelcome || wel.Name != "carol" {
		t.Fatalf("welcome = %+v (%v)", wel, err)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	srv, w := startServer(t, ServerOptions{InputRate: 0.001, InputBurst: 1, IdleTimeout: 5 * time.Second})
	c := dial(t, srv, "name=spam")
	readUntil(t, c, protocol.JSON, func(protocol.State) bool { return true })

	for i := 0; i < 3; i++ {
		sendAction(t, c, protocol.JSON, websocket.TextMessage, protocol.Action{
			Kind: protocol.KindDelete, Actor: 1, Side: game.Left.String(),
		})
	}
	deadline := time.Now().Add(2 * time.Second)
	for w.Metrics().Snapshot()["rate_limited"] != int64(2) {
		if time.Now().After(deadline) {
			t.Fatalf("rate_limited = %v, want 2", w.Metrics().Snapshot()["rate_limited"])
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketRejectsUnknownCodec(t *testing.T) {
	srv, _ := startServer(t, ServerOptions{InputRate: 10, InputBurst: 1})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?codec=xml"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown codec: err=%v resp=%v", err, resp)
	}
}
