package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

const (
	maxMessageBytes = 64 * 1024
	closeWait       = 2 * time.Second
	writeWait       = 5 * time.Second
)

// Handler recibe eventos ya validados.
type Handler func(entity.Event)

// Channel conexión realtime de una tienda. Una instancia se conecta una sola vez; para otra
// tienda se crea otro Channel (ver Manager). Los handlers corren en la goroutine de lectura.
type Channel struct {
	endpoint string
	storeID  string
	id       string
	dialer   *websocket.Dialer
	log      *logger.Logger

	mu       sync.RWMutex
	handlers map[entity.EventName][]Handler
	any      []Handler

	conn      *websocket.Conn
	writeMu   sync.Mutex
	connected atomic.Bool
	started   atomic.Bool
	closing   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewChannel prepara el canal de storeID contra endpoint (ws:// o wss://).
func NewChannel(endpoint, storeID string, log *logger.Logger) *Channel {
	id := uuid.NewString()
	return &Channel{
		endpoint: endpoint,
		storeID:  storeID,
		id:       id,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:      log.Component("realtime").WithStr("store_id", storeID).WithStr("conn_id", id),
		handlers: make(map[entity.EventName][]Handler),
		done:     make(chan struct{}),
	}
}

// StoreID tienda dueña del canal.
func (c *Channel) StoreID() string { return c.storeID }

// Connected informa si la conexión está abierta.
func (c *Channel) Connected() bool { return c.connected.Load() }

// Done se cierra cuando termina la goroutine de lectura.
func (c *Channel) Done() <-chan struct{} { return c.done }

// On registra un handler para name.
func (c *Channel) On(name entity.EventName, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = append(c.handlers[name], h)
}

// OnAny registra un handler para todos los eventos.
func (c *Channel) OnAny(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.any = append(c.any, h)
}

// OnStockUpdate, OnOrderStatus, ... registran handlers tipados.
func (c *Channel) OnStockUpdate(fn func(entity.StockUpdate))         { on(c, entity.EventStockUpdate, fn) }
func (c *Channel) OnOrderStatus(fn func(entity.OrderStatus))         { on(c, entity.EventOrderStatus, fn) }
func (c *Channel) OnPaymentReceived(fn func(entity.PaymentReceived)) { on(c, entity.EventPaymentReceived, fn) }
func (c *Channel) OnLowStockAlert(fn func(entity.LowStockAlert))     { on(c, entity.EventLowStockAlert, fn) }
func (c *Channel) OnNewOrder(fn func(entity.NewOrder))               { on(c, entity.EventNewOrder, fn) }
func (c *Channel) OnError(fn func(entity.ErrorEvent))                { on(c, entity.EventError, fn) }
func (c *Channel) OnDisconnect(fn func(entity.Disconnect))           { on(c, entity.EventDisconnect, fn) }
func (c *Channel) OnConnectionEstablished(fn func(entity.ConnectionEstablished)) {
	on(c, entity.EventConnectionEstablished, fn)
}

func on[T entity.Event](c *Channel, name entity.EventName, fn func(T)) {
	c.On(name, func(ev entity.Event) {
		if typed, ok := ev.(T); ok {
			fn(typed)
		}
	})
}

// Connect abre la conexión autenticada con el storeId y arranca la lectura.
func (c *Channel) Connect(ctx context.Context) error {
	if c.storeID == "" {
		return fmt.Errorf("realtime: storeId vacío: %w", domain.ErrInvalidInput)
	}
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("realtime: el canal ya fue usado")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		close(c.done)
		return fmt.Errorf("realtime: endpoint inválido: %w", err)
	}
	q := u.Query()
	q.Set("storeId", c.storeID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("X-Connection-ID", c.id)
	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		close(c.done)
		return fmt.Errorf("realtime: conectar: %w: %v", domain.ErrTransport, err)
	}
	conn.SetReadLimit(maxMessageBytes)

	var auth authFrame
	auth.Auth.StoreID = c.storeID
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		close(c.done)
		return fmt.Errorf("realtime: autenticar canal: %w: %v", domain.ErrTransport, err)
	}
	_ = conn.SetWriteDeadline(time.Time{})

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	c.connected.Store(true)
	c.log.Info().Msg("canal realtime conectado")
	if c.closing.Load() {
		conn.Close()
	}

	go c.readLoop()
	return nil
}

func (c *Channel) readLoop() {
	defer close(c.done)
	reason := "closed"
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case c.closing.Load():
				reason = "client"
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				reason = "server"
			default:
				reason = "transport"
				c.log.Warn().Err(err).Msg("lectura realtime interrumpida")
			}
			break
		}
		ev, err := Decode(msg)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEvent) {
				c.log.Warn().Err(err).Msg("evento desconocido descartado")
			} else {
				c.log.Warn().Err(err).Msg("evento inválido descartado")
			}
			continue
		}
		c.dispatch(ev)
	}
	c.connected.Store(false)
	c.conn.Close()
	c.dispatch(entity.Disconnect{Reason: reason})
	c.log.Info().Str("reason", reason).Msg("canal realtime desconectado")
}

func (c *Channel) dispatch(ev entity.Event) {
	c.mu.RLock()
	hs := append([]Handler(nil), c.handlers[ev.Name()]...)
	hs = append(hs, c.any...)
	c.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}

// Close cierra la conexión y espera a que termine la lectura. Es idempotente.
func (c *Channel) Close() error {
	if !c.started.Load() {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		c.writeMu.Lock()
		conn := c.conn
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
		}
		c.writeMu.Unlock()
		if conn == nil {
			return
		}
		select {
		case <-c.done:
		case <-time.After(closeWait):
			conn.Close()
		}
	})
	<-c.done
	return nil
}
