package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"wordfight/protocol"
)

var (
	errSendQueueFull = errors.New("send queue full")
	errConnClosed    = errors.New("connection closed")
)

const (
	writeWait    = 5 * time.Second
	maxNameRunes = 24
)

// ClientConn 负责发送（写）数据到客户端的轻量包装，实现 Conn
type ClientConn struct {
	ws      *websocket.Conn
	msgType int // json 走文本帧，msgpack 走二进制帧

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, binary bool) *ClientConn {
	msgType := websocket.TextMessage
	if binary {
		msgType = websocket.BinaryMessage
	}
	return &ClientConn{
		ws:      ws,
		msgType: msgType,
		send:    make(chan []byte, 64),
	}
}

// Send 将要发送的消息压入队列（非阻塞，满则丢弃），保证 Tick 不被慢客户端拖住
func (c *ClientConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close 关闭发送队列，写协程写完剩余消息后关闭底层连接；可重复调用
func (c *ClientConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(c.msgType, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端动作，解码后交给世界；退出时通知世界在 Tick 线程中移除该玩家
func (c *ClientConn) readPump(world *World, client ClientID, codec protocol.Codec, limiter *rate.Limiter, idle time.Duration) {
	reason := "closed"
	defer func() {
		_ = c.ws.Close()
		world.Disconnect(client, reason)
	}()
	c.ws.SetReadLimit(4 << 10)
	_ = c.ws.SetReadDeadline(time.Now().Add(idle))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(idle)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			reason = err.Error()
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(idle))

		env, err := codec.DecodeEnvelope(payload)
		if err != nil {
			Log.Debugw("bad envelope", "client", client, "error", err)
			continue
		}
		if env.T != protocol.MsgAction {
			continue
		}
		msg, err := protocol.DecodePayload[protocol.Action](codec, env)
		if err != nil {
			Log.Debugw("bad action payload", "client", client, "error", err)
			continue
		}
		in, err := InputFromMessage(client, msg)
		if err != nil {
			Log.Debugw("malformed action", "client", client, "error", err)
			continue
		}
		if !limiter.Allow() {
			world.Metrics().IncRateLimited()
			continue
		}
		world.Submit(in)
	}
}

// ServerOptions 传输层参数
type ServerOptions struct {
	Tokens       *TokenIssuer // nil 时不签发也不校验令牌
	RequireToken bool
	Results      ResultStore // nil 时结果与排行榜接口返回 503
	InputRate    float64     // 每连接每秒动作数
	InputBurst   int
	IdleTimeout  time.Duration
}

// Server WebSocket 接入与 HTTP 接口
type Server struct {
	world      *World
	opts       ServerOptions
	nextClient atomic.Uint64
	upgrader   websocket.Upgrader
}

func NewServer(world *World, opts ServerOptions) *Server {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.InputBurst <= 0 {
		opts.InputBurst = 1
	}
	return &Server{
		world: world,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// 演示环境：允许所有来源（生产环境需严格限制）
				return true
			},
		},
	}
}

// Routes 注册所有 HTTP 路由
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/token", s.HandleToken)
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/admin/results", s.HandleResults)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/leaderboard", s.HandleLeaderboard)
	mux.HandleFunc("/healthz", s.HandleHealth)
}

// HandleWS WebSocket 接入：?token=...&codec=json|msgpack，或未强制令牌时 ?name=alice
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if raw := q.Get("token"); raw != "" || s.opts.RequireToken {
		if s.opts.Tokens == nil {
			http.Error(w, "tokens disabled", http.StatusServiceUnavailable)
			return
		}
		sess, err := s.opts.Tokens.Verify(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		name = sess.Name
	}
	name, err := cleanName(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	codec, err := protocol.CodecByName(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := ClientID(s.nextClient.Add(1))
	if name == "" {
		name = fmt.Sprintf("player-%d", id)
	}
	client := NewClientConn(ws, codec.Binary())
	limiter := rate.NewLimiter(rate.Limit(s.opts.InputRate), s.opts.InputBurst)
	s.world.Connect(id, name, client, codec)

	go client.writePump(s.opts.IdleTimeout / 2)
	go client.readPump(s.world, id, codec, limiter, s.opts.IdleTimeout)
}

// cleanName 去掉首尾空白并限制长度；空名由调用方补默认值
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !utf8.ValidString(name) {
		return "", errors.New("name is not valid utf-8")
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return "", fmt.Errorf("name longer than %d characters", maxNameRunes)
	}
	return name, nil
}
