// Package draft holds the in-progress order between the address and payment checkout steps.
package draft

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("draft not found")

// Draft is not persisted to the database. UserID, TotalAmount and CreatedAt are set server side.
type Draft struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Note        string          `json:"note,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func New(userID, address, phone, note string, total decimal.Decimal, now time.Time) Draft {
	return Draft{
		ID:          uuid.NewString(),
		UserID:      userID,
		Address:     address,
		Phone:       phone,
		Note:        note,
		TotalAmount: total,
		CreatedAt:   now,
	}
}

// Store is keyed by the browser session id.
// Peek leaves the draft in place, Take consumes it, reads after Take report ErrNotFound.
type Store interface {
	Put(ctx context.Context, sessionID string, d Draft) error
	Peek(ctx context.Context, sessionID string) (*Draft, error)
	Take(ctx context.Context, sessionID string) (*Draft, error)
	Discard(ctx context.Context, sessionID string) error
}
