package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"

	diag "github.com/coreman2200/funtimes-inception/internal/diagnostics"
	"github.com/coreman2200/funtimes-inception/internal/orchestrator"
	"github.com/coreman2200/funtimes-inception/internal/scene"
	"github.com/coreman2200/funtimes-inception/internal/topics"
)

const writeWait = 200 * time.Millisecond

// Hub bridges the orchestrator to browser clients: it is a render Surface
// and a Panel, and forwards control messages back into the loop.
type Hub struct {
	mu          sync.RWMutex
	wmu         sync.Mutex // serialises writes; a conn allows one writer
	topics      *topics.Store
	input       orchestrator.Input
	clients     map[*websocket.Conn]bool
	panelConns  map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	frameID   uint64
	elapsed   float64
	panel     int
	startTime time.Time
	upgrader  websocket.Upgrader
}

func NewHub(store *topics.Store, input orchestrator.Input) *Hub {
	return &Hub{
		topics:      store,
		input:       input,
		clients:     map[*websocket.Conn]bool{},
		panelConns:  map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		panel:       scene.NoPanel,
		startTime:   time.Now(),
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Routes registers every handler on mux.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/panel", h.HandlePanelWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("GET /topics", h.HandleTopics)
	mux.HandleFunc("GET /topics/{id}", h.HandleTopic)
	mux.HandleFunc("GET /topics/{id}/links/{n}/qr.png", h.HandleQR)
	mux.HandleFunc("/health", h.HandleHealth)
}

type hello struct {
	Type    string `json:"type"`
	Topics  int    `json:"topics"`
	FrameID uint64 `json:"frame_id"`
	Panel   int    `json:"panel"`
}

// subscribe upgrades the request, adds the conn to set and drains reads
// until the peer goes away.
func (h *Hub) subscribe(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	set[conn] = true
	hi := hello{Type: "hello", Topics: h.topics.Len(), FrameID: h.frameID, Panel: h.panel}
	h.mu.Unlock()
	h.write(conn, hi)

	go func() {
		defer func() {
			h.mu.Lock()
			delete(set, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) { h.subscribe(w, r, h.clients) }

func (h *Hub) HandlePanelWS(w http.ResponseWriter, r *http.Request) { h.subscribe(w, r, h.panelConns) }

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) { h.subscribe(w, r, h.diagClients) }

type controlMsg struct {
	Type  string  `json:"type"` // pointer | resize | select | close
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Index *int    `json:"index"`
}

func (m controlMsg) event() (orchestrator.Event, error) {
	switch m.Type {
	case "pointer":
		return orchestrator.PointerEvent(m.X, m.Y), nil
	case "resize":
		return orchestrator.ResizeEvent(m.W, m.H), nil
	case "select":
		if m.Index == nil {
			return orchestrator.Event{}, errors.New("select without index")
		}
		return orchestrator.SelectEvent(*m.Index), nil
	case "close":
		return orchestrator.CloseEvent(), nil
	}
	return orchestrator.Event{}, errors.New("unknown control type " + strconv.Quote(m.Type))
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Diag(diag.Diagnostic{Severity: diag.Warn, Code: diag.ControlBad, Summary: "malformed control message", Detail: err.Error()})
			continue
		}
		ev, err := msg.event()
		if err != nil {
			h.Diag(diag.Diagnostic{Severity: diag.Warn, Code: diag.ControlBad, Summary: "rejected control message", Detail: err.Error()})
			continue
		}
		if ev.Kind == orchestrator.EventSelect && !h.topics.Valid(ev.Index) {
			h.Diag(diag.Diagnostic{
				Severity: diag.Info, Code: diag.SelectInvalid, Summary: "selection has no topic",
				Evidence: map[string]any{"index": ev.Index, "topics": h.topics.Len()},
			})
		}
		if h.input == nil || !h.input.Post(ev) {
			h.Diag(diag.Diagnostic{
				Severity: diag.Warn, Code: diag.InputDropped, Summary: "input queue full",
				Evidence: map[string]any{"kind": ev.Kind.String()},
			})
		}
	}
}

// Publish broadcasts a frame to every /ws client. Slow or broken clients
// are dropped; the frame loop never sees their errors.
func (h *Hub) Publish(f scene.Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.frameID, h.elapsed = f.ID, f.Elapsed
	h.mu.Unlock()
	h.broadcast(h.clients, b)
	return nil
}

type panelMsg struct {
	Type  string        `json:"type"` // open | close
	Topic int           `json:"topic"`
	Data  *topics.Topic `json:"data,omitempty"`
}

func (h *Hub) Open(id int) {
	msg := panelMsg{Type: "open", Topic: id}
	if t, err := h.topics.Get(id); err == nil {
		msg.Data = &t
	}
	h.mu.Lock()
	h.panel = id
	h.mu.Unlock()
	b, _ := json.Marshal(msg)
	h.broadcast(h.panelConns, b)
}

func (h *Hub) Close() {
	h.mu.Lock()
	h.panel = scene.NoPanel
	h.mu.Unlock()
	b, _ := json.Marshal(panelMsg{Type: "close", Topic: scene.NoPanel})
	h.broadcast(h.panelConns, b)
}

// Diag logs d and pushes it to /diag clients.
func (h *Hub) Diag(d diag.Diagnostic) {
	d.Log(log.Logger)
	b, _ := json.Marshal(d)
	h.broadcast(h.diagClients, b)
}

func (h *Hub) broadcast(set map[*websocket.Conn]bool, b []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	h.wmu.Lock()
	defer h.wmu.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write ws")
			c.Close()
		}
	}
}

func (h *Hub) write(c *websocket.Conn, v any) {
	b, _ := json.Marshal(v)
	h.wmu.Lock()
	defer h.wmu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.WriteMessage(websocket.TextMessage, b)
}

// Clients reports connected frame subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Hub) HandleTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.topics.All())
}

func (h *Hub) HandleTopic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad topic id", http.StatusBadRequest)
		return
	}
	t, err := h.topics.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Hub) HandleQR(w http.ResponseWriter, r *http.Request) {
	id, err1 := strconv.Atoi(r.PathValue("id"))
	n, err2 := strconv.Atoi(r.PathValue("n"))
	if err1 != nil || err2 != nil {
		http.Error(w, "bad path", http.StatusBadRequest)
		return
	}
	size := 0
	if q := r.URL.Query().Get("size"); q != "" {
		if size, err1 = strconv.Atoi(q); err1 != nil {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
	}
	png, err := h.topics.QR(id, n, size)
	if errors.Is(err, topics.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id":   h.frameID,
		"elapsed_s":  h.elapsed,
		"uptime_s":   time.Since(h.startTime).Seconds(),
		"clients":    len(h.clients),
		"panel":      h.panel,
		"goroutines": runtime.NumGoroutine(),
	}
	h.mu.RUnlock()

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			resp["rss_bytes"] = mi.RSS
		}
		if cpu, err := p.CPUPercent(); err == nil {
			resp["cpu_percent"] = cpu
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
