package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/realtime"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor realtime de prueba
// ──────────────────────────────────────────────────────────────────────────────

type wsServer struct {
	*httptest.Server

	mu     sync.Mutex
	active map[string]int
	auths  []string
	conns  map[string]*websocket.Conn

	// onAuth se ejecuta tras recibir el frame de autenticación.
	onAuth func(conn *websocket.Conn, storeID string)
}

func newWSServer(t *testing.T, onAuth func(conn *websocket.Conn, storeID string)) *wsServer {
	t.Helper()
	s := &wsServer{active: make(map[string]int), conns: make(map[string]*websocket.Conn), onAuth: onAuth}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var auth struct {
			Auth struct {
				StoreID string `json:"storeId"`
			} `json:"auth"`
		}
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		storeID := auth.Auth.StoreID
		if q := r.URL.Query().Get("storeId"); q != storeID {
			return
		}

		s.mu.Lock()
		s.active[storeID]++
		s.auths = append(s.auths, storeID)
		s.conns[storeID] = conn
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			s.active[storeID]--
			s.mu.Unlock()
		}()

		if s.onAuth != nil {
			s.onAuth(conn, storeID)
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *wsServer) endpoint() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/realtime"
}

func (s *wsServer) activeFor(storeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[storeID]
}

func send(conn *websocket.Conn, ev entity.Event) {
	raw, _ := realtime.Encode(ev)
	_ = conn.WriteMessage(websocket.TextMessage, raw)
}

func sendRaw(conn *websocket.Conn, v any) {
	raw, _ := json.Marshal(v)
	_ = conn.WriteMessage(websocket.TextMessage, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Channel
// ──────────────────────────────────────────────────────────────────────────────

func TestChannel_RecibeEventosTipados_YDescartaDesconocidos(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn, storeID string) {
		send(conn, entity.ConnectionEstablished{StoreID: storeID})
		sendRaw(conn, map[string]any{"event": "price_change", "data": map[string]any{"productId": "p1"}})
		sendRaw(conn, map[string]any{"event": "stock_update", "data": map[string]any{}})
		sendRaw(conn, map[string]any{"event": "stock_update", "data": map[string]any{"productId": "p1", "quantity": 7}})
	})

	ch := realtime.NewChannel(srv.endpoint(), "s1", logger.Nop())
	stock := make(chan entity.StockUpdate, 4)
	ch.OnStockUpdate(func(e entity.StockUpdate) { stock <- e })
	var mu sync.Mutex
	var names []entity.EventName
	ch.OnAny(func(e entity.Event) {
		mu.Lock()
		names = append(names, e.Name())
		mu.Unlock()
	})

	require.NoError(t, ch.Connect(context.Background()))
	assert.True(t, ch.Connected())

	select {
	case e := <-stock:
		assert.Equal(t, "p1", e.ProductID)
		assert.Equal(t, "7", e.Quantity.String())
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó stock_update")
	}

	require.NoError(t, ch.Close())
	assert.False(t, ch.Connected())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []entity.EventName{
		entity.EventConnectionEstablished,
		entity.EventStockUpdate,
		entity.EventDisconnect,
	}, names)
}

func TestChannel_Close_EsIdempotenteYEmiteDisconnectDelCliente(t *testing.T) {
	srv := newWSServer(t, nil)
	ch := realtime.NewChannel(srv.endpoint(), "s1", logger.Nop())
	reasons := make(chan string, 2)
	ch.OnDisconnect(func(d entity.Disconnect) { reasons <- d.Reason })

	require.NoError(t, ch.Connect(context.Background()))
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	select {
	case <-ch.Done():
	default:
		t.Fatal("Done debe estar cerrado tras Close")
	}
	assert.Equal(t, "client", <-reasons)
	assert.Len(t, reasons, 0)
	assert.Eventually(t, func() bool { return srv.activeFor("s1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestChannel_CierreDelServidor(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn, _ string) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	})
	ch := realtime.NewChannel(srv.endpoint(), "s1", logger.Nop())
	reasons := make(chan string, 1)
	ch.OnDisconnect(func(d entity.Disconnect) { reasons <- d.Reason })

	require.NoError(t, ch.Connect(context.Background()))

	select {
	case r := <-reasons:
		assert.Equal(t, "server", r)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó disconnect")
	}
	assert.False(t, ch.Connected())
}

func TestChannel_SinTienda_ErrInvalidInput(t *testing.T) {
	ch := realtime.NewChannel("ws://127.0.0.1:1/realtime", "", logger.Nop())
	require.ErrorIs(t, ch.Connect(context.Background()), domain.ErrInvalidInput)
	require.NoError(t, ch.Close())
}

func TestChannel_EndpointCaido_ErrTransport(t *testing.T) {
	srv := newWSServer(t, nil)
	endpoint := srv.endpoint()
	srv.Close()

	ch := realtime.NewChannel(endpoint, "s1", logger.Nop())
	err := ch.Connect(context.Background())

	require.ErrorIs(t, err, domain.ErrTransport)
	assert.False(t, ch.Connected())
	require.NoError(t, ch.Close())
}

func TestChannel_SegundoConnect_Falla(t *testing.T) {
	srv := newWSServer(t, nil)
	ch := realtime.NewChannel(srv.endpoint(), "s1", logger.Nop())
	require.NoError(t, ch.Connect(context.Background()))
	defer ch.Close()

	require.Error(t, ch.Connect(context.Background()))
}

// ──────────────────────────────────────────────────────────────────────────────
// Manager
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_Switch_CierraElCanalAnterior(t *testing.T) {
	srv := newWSServer(t, nil)
	m := realtime.NewManager(srv.endpoint(), nil, logger.Nop())
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Switch(ctx, "s1"))
	assert.Eventually(t, func() bool { return srv.activeFor("s1") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Switch(ctx, "s1"), "misma tienda conectada: no reabre")
	require.NoError(t, m.Switch(ctx, "s2"))

	assert.Eventually(t, func() bool {
		return srv.activeFor("s1") == 0 && srv.activeFor("s2") == 1
	}, 2*time.Second, 10*time.Millisecond)
	st := m.Status()
	assert.True(t, st.Connected)
	assert.Equal(t, "s2", st.StoreID)

	srv.mu.Lock()
	assert.Equal(t, []string{"s1", "s2"}, srv.auths)
	srv.mu.Unlock()

	require.NoError(t, m.Switch(ctx, ""))
	assert.False(t, m.Status().Connected)
}

func TestManager_Bind_SigueLaSesion(t *testing.T) {
	srv := newWSServer(t, nil)
	events := make(chan entity.EventName, 8)
	m := realtime.NewManager(srv.endpoint(), func(ch *realtime.Channel) {
		ch.OnAny(func(e entity.Event) { events <- e.Name() })
	}, logger.Nop())

	sessions := make(chan entity.Session, 1)
	done := make(chan struct{})
	go func() {
		m.Bind(context.Background(), sessions)
		close(done)
	}()

	sessions <- entity.Session{
		Status: entity.StatusAuthenticated,
		User:   &entity.Principal{ID: "u1", Email: "owner@store.pk", StoreID: "s1"},
		Store:  &entity.StoreSummary{ID: "s1", Name: "Demo Store"},
	}
	assert.Eventually(t, func() bool { return m.Status().Connected }, 2*time.Second, 10*time.Millisecond)

	sessions <- entity.Session{Status: entity.StatusUnauthenticated}
	assert.Eventually(t, func() bool { return !m.Status().Connected }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return srv.activeFor("s1") == 0 }, 2*time.Second, 10*time.Millisecond)

	close(sessions)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Bind no terminó al cerrarse el canal de sesiones")
	}
}
