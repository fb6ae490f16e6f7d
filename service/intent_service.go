package service

import (
	"errors"
	"time"

	"resto_manager/model"
	"resto_manager/repository"

	"go.uber.org/zap"
)

const intentTTL = 30 * time.Minute

// IntentService manages the short-lived checkout staging records. Intents
// never create orders; they only let the client show a definitive total
// before a payment attempt.
type IntentService struct {
	Intents repository.IntentRepository
	Orders  repository.OrderRepository
	Log     *zap.Logger
}

func NewIntentService(intents repository.IntentRepository, orders repository.OrderRepository, log *zap.Logger) *IntentService {
	return &IntentService{Intents: intents, Orders: orders, Log: log}
}

// CreateOrReplace stages a checkout. The client re-submits the whole cart on
// every change, so last-write-wins on the pending intent is the merge policy.
func (s *IntentService) CreateOrReplace(restaurantId uint, in model.CreateIntentInput) (*model.CheckoutIntent, *ApiError) {
	intent := model.CheckoutIntent{
		RestaurantId: restaurantId,
		OrderType:    model.OrderTypeTable,
		Amount:       in.Amount,
		Cart:         in.Cart,
		Note:         in.Note,
		Status:       model.IntentPending,
		ExpiresAt:    time.Now().Add(intentTTL),
	}

	if in.OrderType == model.OrderTypeTakeaway || in.MesaId == nil {
		intent.OrderType = model.OrderTypeTakeaway
	} else {
		mesa, err := s.Orders.FindMesa(restaurantId, *in.MesaId)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, NotFound("mesa not found for this restaurant")
			}
			return nil, Internal("failed to load mesa", err)
		}
		if mesa.IsTakeaway {
			intent.OrderType = model.OrderTypeTakeaway
		} else {
			intent.MesaId = &mesa.ID
		}
	}

	saved, err := s.Intents.CreateOrReplace(&intent)
	if err != nil {
		s.Log.Error("checkout intent upsert failed",
			zap.Uint("restaurant_id", restaurantId),
			zap.Error(err))
		return nil, Internal("failed to stage checkout", err)
	}
	return saved, nil
}

// Abandon marks a pending intent abandoned. A guard miss means the intent
// already progressed and is reported as a conflict, not an error.
func (s *IntentService) Abandon(restaurantId, id uint) (*model.CheckoutIntent, *ApiError) {
	return s.markStatus(restaurantId, id, model.IntentAbandoned)
}

// Expire marks a pending intent expired.
func (s *IntentService) Expire(restaurantId, id uint) (*model.CheckoutIntent, *ApiError) {
	return s.markStatus(restaurantId, id, model.IntentExpired)
}

func (s *IntentService) markStatus(restaurantId, id uint, to string) (*model.CheckoutIntent, *ApiError) {
	intent, err := s.Intents.MarkStatus(restaurantId, id, model.IntentPending, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGuardFailed):
			return nil, Conflict("intent is no longer pending")
		case errors.Is(err, repository.ErrNotFound):
			return nil, NotFound("intent not found")
		default:
			return nil, Internal("failed to update intent", err)
		}
	}
	return intent, nil
}

// Get returns an intent, applying read-time expiry to pending rows past
// their deadline.
func (s *IntentService) Get(restaurantId, id uint) (*model.CheckoutIntent, *ApiError) {
	intent, err := s.Intents.FindByID(restaurantId, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("intent not found")
		}
		return nil, Internal("failed to load intent", err)
	}
	if intent.Expired(time.Now()) {
		intent.Status = model.IntentExpired
	}
	return intent, nil
}

// ExpireOverdue persists read-time expiry in bulk; run from the sweep job.
func (s *IntentService) ExpireOverdue() (int64, error) {
	return s.Intents.ExpireOverdue(time.Now())
}

// PurgeStale deletes settled intents older than the retention window.
func (s *IntentService) PurgeStale(retention time.Duration) (int64, error) {
	return s.Intents.PurgeStale(time.Now().Add(-retention))
}
