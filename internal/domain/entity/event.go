package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventName nombre de un evento entrante del canal realtime.
type EventName string

// Eventos soportados. Cualquier otro nombre se descarta en la frontera.
const (
	EventStockUpdate           EventName = "stock_update"
	EventOrderStatus           EventName = "order_status"
	EventPaymentReceived       EventName = "payment_received"
	EventLowStockAlert         EventName = "low_stock_alert"
	EventNewOrder              EventName = "new_order"
	EventConnectionEstablished EventName = "connection_established"
	EventError                 EventName = "error"
	EventDisconnect            EventName = "disconnect"
)

// Event variante cerrada de los eventos realtime. Solo los tipos de este paquete la implementan.
type Event interface {
	Name() EventName
	isEvent()
}

// StockUpdate cambio de existencias de un producto.
type StockUpdate struct {
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName,omitempty"`
	WarehouseID      string          `json:"warehouseId,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previousQuantity"`
}

// OrderStatus cambio de estado de un pedido.
type OrderStatus struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentReceived pago registrado contra un pedido.
type PaymentReceived struct {
	OrderID   string          `json:"orderId"`
	PaymentID string          `json:"paymentId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
}

// LowStockAlert un producto quedó por debajo de su umbral.
type LowStockAlert struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Threshold   decimal.Decimal `json:"threshold"`
}

// NewOrder pedido nuevo para la tienda.
type NewOrder struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
	Items   int             `json:"items"`
	Source  string          `json:"source,omitempty"`
}

// ConnectionEstablished confirmación del backend tras autenticar el canal.
type ConnectionEstablished struct {
	StoreID      string `json:"storeId"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// ErrorEvent error reportado por el backend sobre el canal.
type ErrorEvent struct {
	Message string `json:"message"`
}

// Disconnect fin de la conexión (local o remoto).
type Disconnect struct {
	Reason string `json:"reason,omitempty"`
}

func (StockUpdate) Name() EventName           { return EventStockUpdate }
func (OrderStatus) Name() EventName           { return EventOrderStatus }
func (PaymentReceived) Name() EventName       { return EventPaymentReceived }
func (LowStockAlert) Name() EventName         { return EventLowStockAlert }
func (NewOrder) Name() EventName              { return EventNewOrder }
func (ConnectionEstablished) Name() EventName { return EventConnectionEstablished }
func (ErrorEvent) Name() EventName            { return EventError }
func (Disconnect) Name() EventName            { return EventDisconnect }

func (StockUpdate) isEvent()           {}
func (OrderStatus) isEvent()           {}
func (PaymentReceived) isEvent()       {}
func (LowStockAlert) isEvent()         {}
func (NewOrder) isEvent()              {}
func (ConnectionEstablished) isEvent() {}
func (ErrorEvent) isEvent()            {}
func (Disconnect) isEvent()            {}
