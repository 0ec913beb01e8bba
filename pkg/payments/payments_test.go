package payments

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGateway_CreateAndGet(t *testing.T) {
	g := NewLocalGateway()
	ctx := context.Background()

	in, err := g.CreateIntent(ctx, 2599, "", map[string]string{"customerId": "c1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(in.ID, "pi_"))
	assert.True(t, strings.HasPrefix(in.ClientSecret, in.ID+"_secret_"))
	assert.Equal(t, "usd", in.Currency)
	assert.Equal(t, IntentRequiresPayment, in.Status)

	require.NoError(t, g.SetStatus(in.ID, IntentSucceeded))
	got, err := g.GetIntent(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, got.Status)
	assert.Equal(t, int64(2599), got.AmountCents)
}

func TestLocalGateway_Errors(t *testing.T) {
	g := NewLocalGateway()
	_, err := g.CreateIntent(context.Background(), 0, "usd", nil)
	assert.Error(t, err)

	_, err = g.GetIntent(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, ErrIntentNotFound)
	assert.ErrorIs(t, g.SetStatus("pi_missing", IntentFailed), ErrIntentNotFound)
}

func signedEvent(t *testing.T, typ string) []byte {
	t.Helper()
	ev := Event{ID: "evt_1", Type: typ}
	ev.Data.Object = Intent{ID: "pi_123", Status: IntentSucceeded}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestConstructEvent(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload := signedEvent(t, EventIntentSucceeded)
	header := Sign(payload, "whsec", now)

	ev, err := ConstructEvent(payload, header, "whsec", DefaultTolerance, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, EventIntentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.Data.Object.ID)
}

func TestConstructEvent_Rejections(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload := signedEvent(t, EventIntentFailed)
	header := Sign(payload, "whsec", now)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
		at      time.Time
		want    error
	}{
		{"wrong secret", payload, header, "other", now, ErrSignatureMismatch},
		{"tampered body", append([]byte(" "), payload...), header, "whsec", now, ErrSignatureMismatch},
		{"too old", payload, header, "whsec", now.Add(time.Hour), ErrSignatureExpired},
		{"garbage header", payload, "nonsense", "whsec", now, ErrBadSignatureHeader},
		{"bad timestamp", payload, "t=abc,v1=00", "whsec", now, ErrBadSignatureHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConstructEvent(tt.payload, tt.header, tt.secret, DefaultTolerance, tt.at)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
