package realtime_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/realtime"
)

func TestDecode_StockUpdate(t *testing.T) {
	ev, err := realtime.Decode([]byte(`{"event":"stock_update","data":{"productId":"p1","quantity":"12.5","previousQuantity":14}}`))
	require.NoError(t, err)

	su, ok := ev.(entity.StockUpdate)
	require.True(t, ok, "se esperaba StockUpdate, llegó %T", ev)
	assert.Equal(t, "p1", su.ProductID)
	assert.True(t, su.Quantity.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, su.PreviousQuantity.Equal(decimal.NewFromInt(14)))
}

func TestDecode_TodasLasVariantes(t *testing.T) {
	cases := []struct {
		raw  string
		want entity.EventName
	}{
		{`{"event":"order_status","data":{"orderId":"o1","status":"paid"}}`, entity.EventOrderStatus},
		{`{"event":"payment_received","data":{"orderId":"o1","amount":"99.90","method":"cash"}}`, entity.EventPaymentReceived},
		{`{"event":"low_stock_alert","data":{"productId":"p1","quantity":2,"threshold":5}}`, entity.EventLowStockAlert},
		{`{"event":"new_order","data":{"orderId":"o2","total":"10","items":3}}`, entity.EventNewOrder},
		{`{"event":"connection_established","data":{"storeId":"s1"}}`, entity.EventConnectionEstablished},
		{`{"event":"error","data":{"message":"boom"}}`, entity.EventError},
		{`{"event":"disconnect"}`, entity.EventDisconnect},
	}
	for _, tc := range cases {
		ev, err := realtime.Decode([]byte(tc.raw))
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, ev.Name())
	}
}

func TestDecode_EventoDesconocido(t *testing.T) {
	_, err := realtime.Decode([]byte(`{"event":"price_change","data":{}}`))
	require.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestDecode_PayloadIncompletoOMalformado(t *testing.T) {
	for _, raw := range []string{
		`no es json`,
		`{"event":"stock_update","data":{}}`,
		`{"event":"order_status","data":{"orderId":"o1"}}`,
		`{"event":"payment_received","data":{"orderId":"o1","amount":"abc"}}`,
		`{"event":"error","data":{"message":""}}`,
		`{"event":"new_order","data":[1,2]}`,
	} {
		_, err := realtime.Decode([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrMalformedPayload, raw)
	}
}

func TestEncode_IdaYVuelta(t *testing.T) {
	in := entity.PaymentReceived{OrderID: "o1", Amount: decimal.RequireFromString("250.75"), Method: "card"}

	raw, err := realtime.Encode(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"payment_received"`)

	out, err := realtime.Decode(raw)
	require.NoError(t, err)
	pr := out.(entity.PaymentReceived)
	assert.True(t, pr.Amount.Equal(in.Amount))
	assert.Equal(t, "card", pr.Method)
}
