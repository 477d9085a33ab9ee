package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attanavaid/portfolio/internal/clock"
	"github.com/attanavaid/portfolio/internal/contact"
)

func startServer(t *testing.T, obs Observer) string {
	t.Helper()
	srv := NewServer(Deps{
		Clock:     clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Portfolio: testPortfolio,
		Submitter: stubSubmitter{res: contact.Result{Channel: contact.ChannelEmailJS}},
		Observer:  obs,
	})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Serve(w, r, "127.0.0.1")
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m wireMessage
		require.NoError(t, conn.ReadJSON(&m))
		if m.Type == typ {
			return m.Data
		}
	}
}

func TestServer_SessionRoundTrip(t *testing.T) {
	obs := &countingObserver{}
	url := startServer(t, obs)

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(Inbound{
		Type: TypeHello,
		Data: json.RawMessage(`{"theme":"light","prefersDark":true,"layout":{"viewport":800,"sections":[{"id":"hero","top":0,"height":900},{"id":"skills","top":2000,"height":900}]},"scrollY":0}`),
	}))

	var root rootData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, TypeRoot), &root))
	assert.Equal(t, "light", root.Resolved)

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeNav, Data: json.RawMessage(`{"id":"skills"}`)}))
	var target scrollToData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, TypeScrollTo), &target))
	assert.Equal(t, scrollToData{ID: "skills", Top: 1920}, target)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "warp"}))
	var e errorData
	require.NoError(t, json.Unmarshal(readUntil(t, conn, TypeError), &e))
	assert.Contains(t, e.Message, "unknown message type")

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		opened, closed := obs.counts()
		return opened == 1 && closed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_RequiresHelloFirst(t *testing.T) {
	obs := &countingObserver{}
	url := startServer(t, obs)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeScroll, Data: json.RawMessage(`{"y":10}`)}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)

	opened, _ := obs.counts()
	assert.Zero(t, opened)
}

func TestConnSink_DropsSlowClient(t *testing.T) {
	sink := newConnSink(2)
	sink.Send(Message{Type: TypeView})
	sink.Send(Message{Type: TypeView})
	sink.Send(Message{Type: TypeView})

	select {
	case <-sink.quit:
	default:
		t.Fatal("overflowing sink should stop")
	}
	sink.Send(Message{Type: TypeView})
	assert.Len(t, sink.out, 2)
}
