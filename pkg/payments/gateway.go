// Package payments is the boundary between checkout and the card processor.
// Only payment intents and signed webhook events cross it.
package payments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrIntentNotFound = errors.New("payment intent not found")

const (
	IntentRequiresPayment = "requires_payment_method"
	IntentSucceeded       = "succeeded"
	IntentFailed          = "failed"
)

// Intent is a request to collect an amount from a customer.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	AmountCents  int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    time.Time         `json:"created"`
}

// Gateway creates and looks up payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// LocalGateway keeps intents in memory. It backs development and tests;
// production deployments plug a processor-backed Gateway in its place.
type LocalGateway struct {
	mu      sync.RWMutex
	intents map[string]*Intent
	now     func() time.Time
}

func NewLocalGateway() *LocalGateway {
	return &LocalGateway{intents: make(map[string]*Intent), now: time.Now}
}

func (g *LocalGateway) CreateIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if amountCents <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}
	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		AmountCents:  amountCents,
		Currency:     currency,
		Status:       IntentRequiresPayment,
		Metadata:     metadata,
		CreatedAt:    g.now(),
	}

	g.mu.Lock()
	g.intents[id] = in
	g.mu.Unlock()

	cp := *in
	return &cp, nil
}

func (g *LocalGateway) GetIntent(_ context.Context, id string) (*Intent, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	in, ok := g.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	cp := *in
	return &cp, nil
}

// SetStatus moves an intent to a terminal state, as the processor would
// after the customer confirms.
func (g *LocalGateway) SetStatus(id, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[id]
	if !ok {
		return ErrIntentNotFound
	}
	in.Status = status
	return nil
}
