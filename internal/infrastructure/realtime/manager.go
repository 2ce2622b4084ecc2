package realtime

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Manager es el único dueño del canal realtime del terminal. Nunca hay dos canales vivos a
// la vez: al cambiar de tienda el anterior se cierra antes de abrir el nuevo.
type Manager struct {
	endpoint string
	setup    func(*Channel)
	base     *logger.Logger
	log      *logger.Logger

	mu      sync.Mutex
	current *Channel
}

// NewManager construye el manager. setup registra los handlers en cada canal nuevo.
func NewManager(endpoint string, setup func(*Channel), log *logger.Logger) *Manager {
	return &Manager{endpoint: endpoint, setup: setup, base: log, log: log.Component("realtime_manager")}
}

// Switch deja el canal apuntando a storeID. Con storeID vacío solo desmonta el actual.
// Si ya hay un canal conectado a esa tienda no hace nada.
func (m *Manager) Switch(ctx context.Context, storeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.StoreID() == storeID && m.current.Connected() {
			return nil
		}
		_ = m.current.Close()
		m.current = nil
	}
	if storeID == "" {
		return nil
	}

	ch := NewChannel(m.endpoint, storeID, m.base)
	if m.setup != nil {
		m.setup(ch)
	}
	if err := ch.Connect(ctx); err != nil {
		return err
	}
	m.current = ch
	return nil
}

// Bind sigue las sesiones publicadas: conecta cuando hay tienda autenticada y desmonta en
// cualquier otro caso. Bloquea hasta que sessions se cierre o ctx termine, y al salir cierra
// el canal.
func (m *Manager) Bind(ctx context.Context, sessions <-chan entity.Session) {
	defer m.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-sessions:
			if !ok {
				return
			}
			storeID := ""
			if s.Authenticated() && s.Store != nil {
				storeID = s.Store.ID
			}
			if err := m.Switch(ctx, storeID); err != nil {
				m.log.Warn().Err(err).Str("store_id", storeID).Msg("no se pudo abrir el canal realtime")
			}
		}
	}
}

// Status estado del canal actual.
func (m *Manager) Status() dto.RealtimeStatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return dto.RealtimeStatusResponse{}
	}
	return dto.RealtimeStatusResponse{
		Connected: m.current.Connected(),
		StoreID:   m.current.StoreID(),
	}
}

// Close desmonta el canal actual.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	return err
}
