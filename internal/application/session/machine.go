package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/ports"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

const (
	keyCheck   = "check"
	keyRefresh = "refresh"
)

// Machine es la máquina de estados de la sesión del terminal. Es el único escritor de
// entity.Session; el resto de componentes recibe copias vía Snapshot o Subscribe.
//
// Login, Logout y CheckSession abren una época al empezar; Refresh solo anota la vigente.
// Un resultado se aplica si su época sigue vigente al terminar, así que entre operaciones
// solapadas gana la última en terminar, salvo que después haya empezado otra que la reemplace.
// Nadie observa una sesión a medio escribir.
type Machine struct {
	api    ports.AuthAPI
	routes Routes
	log    *logger.Logger

	mu       sync.Mutex
	sess     entity.Session
	epoch    uint64
	checking bool
	subs     map[int]chan entity.Session
	nextSub  int

	loginInFlight atomic.Bool
	group         singleflight.Group
}

// NewMachine construye la máquina en estado unknown.
func NewMachine(api ports.AuthAPI, routes Routes, log *logger.Logger) *Machine {
	return &Machine{
		api:    api,
		routes: routes,
		log:    log.Component("session"),
		sess:   entity.Session{Status: entity.StatusUnknown},
		subs:   make(map[int]chan entity.Session),
	}
}

// Snapshot copia de solo lectura de la sesión actual.
func (m *Machine) Snapshot() entity.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Clone()
}

// Subscribe entrega cada nueva sesión confirmada. El canal guarda solo la más reciente:
// un lector lento pierde estados intermedios, nunca el último. cancel cierra el canal.
func (m *Machine) Subscribe() (<-chan entity.Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan entity.Session, 1)
	ch <- m.sess.Clone()
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

// CheckSession valida la credencial actual si el estado es unknown. Con cualquier otro
// estado no hace llamadas y devuelve la sesión vigente. Las comprobaciones concurrentes
// comparten una sola petición.
func (m *Machine) CheckSession(ctx context.Context) (entity.Session, error) {
	m.mu.Lock()
	pending := m.sess.Status == entity.StatusUnknown ||
		(m.sess.Status == entity.StatusAuthenticating && m.checking)
	snap := m.sess.Clone()
	m.mu.Unlock()
	if !pending {
		return snap, nil
	}
	return m.runCheck(ctx)
}

// Login envía credenciales y, si el backend las acepta, fija usuario y tienda a la vez.
// Mientras hay un login en curso los reintentos devuelven domain.ErrLoginInFlight. Si un
// Logout o una comprobación posterior reemplaza al login, devuelve domain.ErrSuperseded.
func (m *Machine) Login(ctx context.Context, email, password string) (entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return m.Snapshot(), fmt.Errorf("login: %w", domain.ErrInvalidInput)
	}
	if !m.loginInFlight.CompareAndSwap(false, true) {
		return m.Snapshot(), domain.ErrLoginInFlight
	}
	defer m.loginInFlight.Store(false)

	epoch := m.begin(entity.Session{Status: entity.StatusAuthenticating}, false)
	m.log.Info().Str("email", email).Msg("iniciando sesión")

	data, err := m.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return m.fail(epoch, fmt.Errorf("login: %w", err), domain.UserMessage(err))
	}
	if data == nil || !data.User.Complete() {
		err = fmt.Errorf("login: usuario incompleto: %w", domain.ErrMalformedPayload)
		return m.fail(epoch, err, domain.UserMessage(err))
	}

	store := data.Store
	if store == nil {
		store, err = m.lookupStore(ctx, data.User)
	} else {
		err = matchStore(data.User, store)
	}
	if err != nil {
		return m.fail(epoch, fmt.Errorf("login: %w", err), domain.UserMessage(err))
	}

	s, ok := m.commit(epoch, entity.Session{
		User:   data.User,
		Store:  store,
		Status: entity.StatusAuthenticated,
	})
	if !ok {
		return s, fmt.Errorf("login: %w", domain.ErrSuperseded)
	}
	return s, nil
}

// Logout pide invalidar la credencial y limpia la sesión local pase lo que pase con la red.
// Siempre devuelve la intención de ir a la entrada de login.
func (m *Machine) Logout(ctx context.Context) Intent {
	m.begin(entity.Session{Status: entity.StatusUnauthenticated}, false)
	m.log.Info().Msg("sesión cerrada localmente")

	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("logout en backend falló; la sesión local ya está limpia")
	}
	return RedirectTo(m.routes.Login)
}

// Refresh renueva la credencial en silencio. Las llamadas concurrentes comparten una sola
// petición de renovación. Si renueva, vuelve a validar la sesión mostrando la anterior hasta
// tener resultado; si falla, limpia la sesión y pide ir a login salvo que currentPath ya sea
// pública. Si mientras tanto empezó un Login, Logout o CheckSession, el resultado se descarta
// y no se pide navegar.
func (m *Machine) Refresh(ctx context.Context, currentPath string) (Intent, error) {
	v, err, _ := m.group.Do(keyRefresh, func() (any, error) {
		epoch := m.currentEpoch()
		if err := m.api.Refresh(ctx); err != nil {
			err = fmt.Errorf("refresh: %w", err)
			m.log.Info().Err(err).Msg("refresco rechazado")
			_, applied := m.commit(epoch, entity.Session{Status: entity.StatusUnauthenticated})
			return applied, err
		}
		s, applied, err := m.check(ctx, epoch)
		return applied && !s.Authenticated(), err
	})
	if signedOut, _ := v.(bool); signedOut {
		return m.redirectUnlessPublic(currentPath), err
	}
	return Intent{}, err
}

// RefreshLoop renueva la sesión cada interval mientras esté autenticada. Las intenciones de
// navegación resultantes se entregan a onIntent. Termina al cancelarse ctx.
func (m *Machine) RefreshLoop(ctx context.Context, interval time.Duration, currentPath func() string, onIntent func(Intent)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.Snapshot().Authenticated() {
				continue
			}
			intent, err := m.Refresh(ctx, currentPath())
			if err != nil {
				m.log.Warn().Err(err).Msg("refresco periódico falló")
			}
			if intent.Redirect() && onIntent != nil {
				onIntent(intent)
			}
		}
	}
}

// runCheck ejecuta (o se une a) la validación en curso; la sesión pasa a authenticating
// mientras tanto.
func (m *Machine) runCheck(ctx context.Context) (entity.Session, error) {
	v, err, _ := m.group.Do(keyCheck, func() (any, error) {
		epoch := m.begin(entity.Session{Status: entity.StatusAuthenticating}, true)
		s, _, err := m.check(ctx, epoch)
		return s, err
	})
	if v == nil {
		return m.Snapshot(), err
	}
	return v.(entity.Session), err
}

// check valida principal y tienda y confirma en epoch. applied es false si el resultado
// quedó obsoleto.
func (m *Machine) check(ctx context.Context, epoch uint64) (entity.Session, bool, error) {
	p, err := m.api.Me(ctx)
	var store *entity.StoreSummary
	if err == nil {
		store, err = m.lookupStore(ctx, p)
	}
	if err != nil {
		err = fmt.Errorf("check: %w", err)
		m.logFailure(err)
		s, applied := m.commit(epoch, entity.Session{Status: entity.StatusUnauthenticated})
		return s, applied, err
	}
	s, applied := m.commit(epoch, entity.Session{
		User:   p,
		Store:  store,
		Status: entity.StatusAuthenticated,
	})
	return s, applied, nil
}

// lookupStore resuelve la tienda del principal; cualquier fallo es ErrStoreLookup.
func (m *Machine) lookupStore(ctx context.Context, p *entity.Principal) (*entity.StoreSummary, error) {
	if p.StoreID == "" {
		return nil, fmt.Errorf("principal %s sin tienda: %w", p.ID, domain.ErrStoreLookup)
	}
	store, err := m.api.Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreLookup, err)
	}
	return store, matchStore(p, store)
}

func matchStore(p *entity.Principal, store *entity.StoreSummary) error {
	if store.ID != p.StoreID {
		return fmt.Errorf("tienda %s no corresponde a %s: %w", store.ID, p.StoreID, domain.ErrStoreLookup)
	}
	return nil
}

func (m *Machine) redirectUnlessPublic(currentPath string) Intent {
	if m.routes.IsPublic(currentPath) {
		return Intent{}
	}
	return RedirectTo(m.routes.Login)
}

// begin abre una nueva época y publica next como estado intermedio.
func (m *Machine) begin(next entity.Session, checking bool) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.checking = checking
	m.setLocked(next)
	return m.epoch
}

func (m *Machine) currentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// commit aplica next si epoch sigue vigente. Devuelve la sesión resultante y si se aplicó.
// No abre época: una operación que empezó antes y termina después todavía puede confirmar.
func (m *Machine) commit(epoch uint64, next entity.Session) (entity.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		m.log.Debug().Uint64("epoch", epoch).Uint64("current", m.epoch).Msg("resultado obsoleto descartado")
		return m.sess.Clone(), false
	}
	m.checking = false
	m.setLocked(next)
	return m.sess.Clone(), true
}

func (m *Machine) fail(epoch uint64, err error, userMsg string) (entity.Session, error) {
	m.logFailure(err)
	s, _ := m.commit(epoch, entity.Session{
		Status:    entity.StatusUnauthenticated,
		LastError: userMsg,
	})
	return s, err
}

func (m *Machine) logFailure(err error) {
	level := m.log.Info()
	if errors.Is(err, domain.ErrTransport) {
		level = m.log.Warn()
	}
	level.Err(err).Msg("sesión no autenticada")
}

func (m *Machine) setLocked(next entity.Session) {
	prev := m.sess.Status
	m.sess = next.Clone()
	if prev != next.Status {
		ev := m.log.Debug().Str("from", string(prev)).Str("to", string(next.Status))
		if next.User != nil {
			ev = ev.Str("user_id", next.User.ID)
		}
		if next.Store != nil {
			ev = ev.Str("store_id", next.Store.ID)
		}
		ev.Msg("transición de sesión")
	}
	snap := m.sess.Clone()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
