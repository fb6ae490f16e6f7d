package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntentExpired(t *testing.T) {
	now := time.Now()

	pending := CheckoutIntent{Status: IntentPending, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, pending.Expired(now))

	fresh := CheckoutIntent{Status: IntentPending, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, fresh.Expired(now))

	// settled rows are never re-expired regardless of the deadline
	abandoned := CheckoutIntent{Status: IntentAbandoned, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, abandoned.Expired(now))
}
