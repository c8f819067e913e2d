package ws

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/funtimes-inception/internal/diagnostics"
	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/topics"
)

type chanSender struct {
	events chan orchestrator.Event
}

func (c chanSender) Post(ev orchestrator.Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

func setup(t *testing.T, in orchestrator.Input) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(topics.Default(), in)
	mux := http.NewServeMux()
	h.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesAreBroadcast(t *testing.T) {
	h, srv := setup(t, nil)
	c := dial(t, srv, "/ws")

	var hi hello
	readJSON(t, c, &hi)
	assert.Equal(t, "hello", hi.Type)
	assert.Equal(t, 12, hi.Topics)
	assert.Equal(t, scene.NoPanel, hi.Panel)

	require.NoError(t, h.Publish(scene.Frame{ID: 7, Elapsed: 1.5, Panel: 2, Stairs: []scene.StairState{{Index: 0}}}))
	var f scene.Frame
	readJSON(t, c, &f)
	assert.Equal(t, uint64(7), f.ID)
	assert.Equal(t, 2, f.Panel)
	assert.Len(t, f.Stairs, 1)
	assert.Equal(t, 1, h.Clients())
}

func TestPanelEvents(t *testing.T) {
	h, srv := setup(t, nil)
	c := dial(t, srv, "/panel")
	var hi hello
	readJSON(t, c, &hi)

	h.Open(8)
	var msg panelMsg
	readJSON(t, c, &msg)
	assert.Equal(t, "open", msg.Type)
	assert.Equal(t, 8, msg.Topic)
	require.NotNil(t, msg.Data)
	assert.Equal(t, "Links", msg.Data.Title)

	h.Close()
	msg = panelMsg{}
	readJSON(t, c, &msg)
	assert.Equal(t, "close", msg.Type)
	assert.Nil(t, msg.Data)
}

func TestControlForwardsEvents(t *testing.T) {
	in := chanSender{events: make(chan orchestrator.Event, 8)}
	_, srv := setup(t, in)
	c := dial(t, srv, "/control")

	for _, m := range []string{
		`{"type":"resize","w":800,"h":600}`,
		`{"type":"pointer","x":10,"y":20}`,
		`{"type":"select","index":3}`,
		`{"type":"close"}`,
	} {
		require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(m)))
	}

	want := []orchestrator.Event{
		orchestrator.ResizeEvent(800, 600),
		orchestrator.PointerEvent(10, 20),
		orchestrator.SelectEvent(3),
		orchestrator.CloseEvent(),
	}
	for _, w := range want {
		select {
		case ev := <-in.events:
			assert.Equal(t, w, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("event not forwarded")
		}
	}
}

func TestBadControlRaisesDiagnostic(t *testing.T) {
	in := chanSender{events: make(chan orchestrator.Event, 1)}
	_, srv := setup(t, in)
	d := dial(t, srv, "/diag")
	var hi hello
	readJSON(t, d, &hi)

	c := dial(t, srv, "/control")
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"type":"select"}`)))

	var got diag.Diagnostic
	readJSON(t, d, &got)
	assert.Equal(t, diag.ControlBad, got.Code)
	assert.Equal(t, diag.Warn, got.Severity)
	assert.Empty(t, in.events)
}

func TestTopicRoutes(t *testing.T) {
	_, srv := setup(t, nil)

	res, err := http.Get(srv.URL + "/topics/3")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var tp topics.Topic
	require.NoError(t, json.NewDecoder(res.Body).Decode(&tp))
	assert.Equal(t, "Internships", tp.Title)

	for path, code := range map[string]int{
		"/topics/99":                        http.StatusNotFound,
		"/topics/x":                         http.StatusBadRequest,
		"/topics/8/links/0/qr.png":          http.StatusOK,
		"/topics/8/links/9/qr.png":          http.StatusNotFound,
		"/topics/8/links/0/qr.png?size=big": http.StatusBadRequest,
		"/topics":                           http.StatusOK,
	} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		assert.Equal(t, code, res.StatusCode, path)
	}
}

func TestQRRouteClampsSize(t *testing.T) {
	_, srv := setup(t, nil)
	res, err := http.Get(srv.URL + "/topics/8/links/0/qr.png?size=120000")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	cfg, err := png.DecodeConfig(res.Body)
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, topics.MaxQRSize)
}

func TestHealth(t *testing.T) {
	h, srv := setup(t, nil)
	require.NoError(t, h.Publish(scene.Frame{ID: 42, Elapsed: 3}))

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 42.0, body["frame_id"])
	assert.Equal(t, 3.0, body["elapsed_s"])
	assert.Contains(t, body, "goroutines")
}
