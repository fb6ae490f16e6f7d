package service

import (
	"sync"
	"testing"
	"time"

	"resto_manager/model"
	"resto_manager/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memIntentRepo struct {
	mu      sync.Mutex
	nextId  uint
	intents map[uint]*model.CheckoutIntent
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{intents: make(map[uint]*model.CheckoutIntent)}
}

func (m *memIntentRepo) CreateOrReplace(intent *model.CheckoutIntent) (*model.CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if intent.MesaId != nil {
		for _, existing := range m.intents {
			if existing.RestaurantId == intent.RestaurantId &&
				existing.MesaId != nil && *existing.MesaId == *intent.MesaId &&
				existing.Status == model.IntentPending {
				existing.Amount = intent.Amount
				existing.Cart = intent.Cart
				existing.Note = intent.Note
				existing.ExpiresAt = intent.ExpiresAt
				return existing, nil
			}
		}
	}

	m.nextId++
	intent.ID = m.nextId
	m.intents[intent.ID] = intent
	return intent, nil
}

func (m *memIntentRepo) FindByID(restaurantId, id uint) (*model.CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok || intent.RestaurantId != restaurantId {
		return nil, repository.ErrNotFound
	}
	return intent, nil
}

func (m *memIntentRepo) MarkStatus(restaurantId, id uint, from, to string) (*model.CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok || intent.RestaurantId != restaurantId {
		return nil, repository.ErrNotFound
	}
	if intent.Status != from {
		return nil, repository.ErrGuardFailed
	}
	intent.Status = to
	return intent, nil
}

func (m *memIntentRepo) ExpireOverdue(now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, intent := range m.intents {
		if intent.Status == model.IntentPending && now.After(intent.ExpiresAt) {
			intent.Status = model.IntentExpired
			n++
		}
	}
	return n, nil
}

func (m *memIntentRepo) PurgeStale(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, intent := range m.intents {
		if intent.Status != model.IntentPending && intent.UpdatedAt.Before(before) {
			delete(m.intents, id)
			n++
		}
	}
	return n, nil
}

func newTestIntentService() (*IntentService, *memIntentRepo, *memOrderRepo) {
	intents := newMemIntentRepo()
	orders := newMemOrderRepo()
	orders.mesas[1] = model.Mesa{DTO: model.DTO{ID: 1}, RestaurantId: 1, Label: "Mesa 1"}
	orders.mesas[9] = model.Mesa{DTO: model.DTO{ID: 9}, RestaurantId: 1, Label: "Para llevar", IsTakeaway: true}
	return NewIntentService(intents, orders, zap.NewNop()), intents, orders
}

func intentInput(mesa *uint) model.CreateIntentInput {
	return model.CreateIntentInput{
		MesaId: mesa,
		Amount: 42.50,
		Cart:   `{"items":[]}`,
	}
}

func TestCreateIntentReplacesPendingForSameMesa(t *testing.T) {
	svc, _, _ := newTestIntentService()

	first, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(1))))
	require.Nil(t, apiErr)
	assert.Equal(t, model.IntentPending, first.Status)
	assert.Equal(t, model.OrderTypeTable, first.OrderType)

	update := intentInput(ptr(uint(1)))
	update.Amount = 60.00
	second, apiErr := svc.CreateOrReplace(1, update)
	require.Nil(t, apiErr)

	// same row, new amount: no pending intent stacking per table
	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, 60.00, second.Amount, 1e-9)
}

func TestCreateIntentTakeawayNeverCollides(t *testing.T) {
	svc, _, _ := newTestIntentService()

	first, apiErr := svc.CreateOrReplace(1, intentInput(nil))
	require.Nil(t, apiErr)
	second, apiErr := svc.CreateOrReplace(1, intentInput(nil))
	require.Nil(t, apiErr)

	assert.Equal(t, model.OrderTypeTakeaway, first.OrderType)
	assert.Nil(t, first.MesaId)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateIntentOnTakeawayMesaDropsMesaId(t *testing.T) {
	svc, _, _ := newTestIntentService()

	intent, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(9))))
	require.Nil(t, apiErr)
	assert.Equal(t, model.OrderTypeTakeaway, intent.OrderType)
	assert.Nil(t, intent.MesaId)
}

func TestCreateIntentUnknownMesa(t *testing.T) {
	svc, _, _ := newTestIntentService()

	_, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(77))))
	require.NotNil(t, apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestAbandonGuard(t *testing.T) {
	svc, _, _ := newTestIntentService()

	intent, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(1))))
	require.Nil(t, apiErr)

	abandoned, apiErr := svc.Abandon(1, intent.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.IntentAbandoned, abandoned.Status)

	// abandoning twice hits the guard, not a double write
	_, apiErr = svc.Abandon(1, intent.ID)
	require.NotNil(t, apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
}

func TestGetAppliesReadTimeExpiry(t *testing.T) {
	svc, repo, _ := newTestIntentService()

	intent, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(1))))
	require.Nil(t, apiErr)

	repo.intents[intent.ID].ExpiresAt = time.Now().Add(-time.Minute)

	got, apiErr := svc.Get(1, intent.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.IntentExpired, got.Status)
}

func TestExpireOverdueSweep(t *testing.T) {
	svc, repo, _ := newTestIntentService()

	overdue, apiErr := svc.CreateOrReplace(1, intentInput(ptr(uint(1))))
	require.Nil(t, apiErr)
	fresh, apiErr := svc.CreateOrReplace(1, intentInput(nil))
	require.Nil(t, apiErr)

	repo.intents[overdue.ID].ExpiresAt = time.Now().Add(-time.Minute)

	n, err := svc.ExpireOverdue()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, model.IntentExpired, repo.intents[overdue.ID].Status)
	assert.Equal(t, model.IntentPending, repo.intents[fresh.ID].Status)
}
