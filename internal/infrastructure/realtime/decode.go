package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// frame sobre de cada mensaje del canal: {"event": "...", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// authFrame primer mensaje tras conectar.
type authFrame struct {
	Auth struct {
		StoreID string `json:"storeId"`
	} `json:"auth"`
}

// Decode convierte un mensaje crudo en la variante tipada. Los nombres desconocidos
// devuelven domain.ErrUnknownEvent y los payloads incompletos domain.ErrMalformedPayload.
func Decode(raw []byte) (entity.Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("realtime: sobre ilegible: %w", domain.ErrMalformedPayload)
	}
	return decodeEvent(entity.EventName(f.Event), f.Data)
}

func decodeEvent(name entity.EventName, data json.RawMessage) (entity.Event, error) {
	switch name {
	case entity.EventStockUpdate:
		return decodeInto(name, data, func(e entity.StockUpdate) bool { return e.ProductID != "" })
	case entity.EventOrderStatus:
		return decodeInto(name, data, func(e entity.OrderStatus) bool { return e.OrderID != "" && e.Status != "" })
	case entity.EventPaymentReceived:
		return decodeInto(name, data, func(e entity.PaymentReceived) bool { return e.OrderID != "" })
	case entity.EventLowStockAlert:
		return decodeInto(name, data, func(e entity.LowStockAlert) bool { return e.ProductID != "" })
	case entity.EventNewOrder:
		return decodeInto(name, data, func(e entity.NewOrder) bool { return e.OrderID != "" })
	case entity.EventConnectionEstablished:
		return decodeInto(name, data, func(entity.ConnectionEstablished) bool { return true })
	case entity.EventError:
		return decodeInto(name, data, func(e entity.ErrorEvent) bool { return e.Message != "" })
	case entity.EventDisconnect:
		return decodeInto(name, data, func(entity.Disconnect) bool { return true })
	}
	return nil, fmt.Errorf("realtime: %q: %w", name, domain.ErrUnknownEvent)
}

func decodeInto[T entity.Event](name entity.EventName, data json.RawMessage, valid func(T) bool) (entity.Event, error) {
	var ev T
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("realtime: %s: %w", name, domain.ErrMalformedPayload)
		}
	}
	if !valid(ev) {
		return nil, fmt.Errorf("realtime: %s incompleto: %w", name, domain.ErrMalformedPayload)
	}
	return ev, nil
}

// Encode serializa un evento con el sobre del canal.
func Encode(ev entity.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("realtime: serializar %s: %w", ev.Name(), err)
	}
	return json.Marshal(frame{Event: string(ev.Name()), Data: data})
}
