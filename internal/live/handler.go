package live

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 128
)

// Server upgrades /live requests and runs a session per connection.
type Server struct {
	deps     Deps
	upgrader websocket.Upgrader
}

// NewServer returns a Server. The upgrader keeps gorilla's same-origin
// check.
func NewServer(d Deps) *Server {
	return &Server{
		deps: d.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Serve upgrades the connection and blocks until the page goes away. key
// identifies the visitor for contact rate limits.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, key string) {
	log := s.deps.Log
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("live upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	hello, err := readHello(conn)
	if err != nil {
		log.Debug("live handshake failed", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected hello"),
			time.Now().Add(writeWait))
		return
	}

	sink := newConnSink(sendBuffer)
	done := make(chan struct{})
	sess := NewSession(s.deps, key, hello, sink)
	slog := log.With(zap.String("session", sess.ID()))
	go func() {
		defer close(done)
		writePump(conn, sink, slog)
	}()

	s.deps.Observer.SessionOpened()
	defer func() {
		sess.Close()
		sink.stop()
		<-done
		s.deps.Observer.SessionClosed()
	}()

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("live read", zap.Error(err))
			}
			return
		}
		if err := sess.Handle(in); err != nil {
			slog.Debug("live message rejected", zap.String("type", in.Type), zap.Error(err))
			sess.sendError(err)
		}
	}
}

func readHello(conn *websocket.Conn) (Hello, error) {
	var in Inbound
	if err := conn.ReadJSON(&in); err != nil {
		return Hello{}, err
	}
	if in.Type != TypeHello {
		return Hello{}, ErrUnknownMessage
	}
	var h Hello
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &h); err != nil {
			return Hello{}, err
		}
	}
	return h, nil
}

// connSink queues messages for the writer goroutine. A client that falls
// sendBuffer messages behind is disconnected.
type connSink struct {
	out  chan Message
	quit chan struct{}
	once sync.Once
}

func newConnSink(n int) *connSink {
	return &connSink{out: make(chan Message, n), quit: make(chan struct{})}
}

func (c *connSink) Send(m Message) {
	select {
	case <-c.quit:
		return
	default:
	}
	select {
	case c.out <- m:
	default:
		c.stop()
	}
}

func (c *connSink) stop() {
	c.once.Do(func() { close(c.quit) })
}

func writePump(conn *websocket.Conn, sink *connSink, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case m := <-sink.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				log.Debug("live write", zap.Error(err))
				sink.stop()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sink.stop()
				return
			}
		case <-sink.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
