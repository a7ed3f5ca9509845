package payment

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

type Card struct {
	Holder string
	Number string
	Expiry string
	CVV    string
}

// Last4 is safe to log.
func (c Card) Last4() string {
	n := strings.ReplaceAll(c.Number, " ", "")
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

// Gateway charges a card. A false result with a nil error is a decline.
type Gateway interface {
	Pay(ctx context.Context, card Card, amount decimal.Decimal) (bool, error)
}

// StubGateway approves every payment.
type StubGateway struct{}

func (StubGateway) Pay(context.Context, Card, decimal.Decimal) (bool, error) {
	return true, nil
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, card Card, amount decimal.Decimal) (bool, error)

func (f GatewayFunc) Pay(ctx context.Context, card Card, amount decimal.Decimal) (bool, error) {
	return f(ctx, card, amount)
}
