package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SundayYogurt/directory_service/internal/repository"
	"go.uber.org/zap"
)

// AccountEventHandler consumes account lifecycle events from other services
// and revokes role assignments and tokens for deleted principals.
type AccountEventHandler struct {
	userRoleRepo     repository.UserRoleRepository
	businessRoleRepo repository.BusinessRoleRepository
	tokenRepo        repository.TokenRepository
	logger           *zap.Logger
}

func NewAccountEventHandler(
	userRoleRepo repository.UserRoleRepository,
	businessRoleRepo repository.BusinessRoleRepository,
	tokenRepo repository.TokenRepository,
	logger *zap.Logger,
) *AccountEventHandler {
	return &AccountEventHandler{
		userRoleRepo:     userRoleRepo,
		businessRoleRepo: businessRoleRepo,
		tokenRepo:        tokenRepo,
		logger:           logger,
	}
}

type accountEvent struct {
	Event      string `json:"event"`
	UserID     uint   `json:"user_id,omitempty"`
	BusinessID uint   `json:"business_id,omitempty"`
}

func (h *AccountEventHandler) HandleMessage(message string) error {
	var evt accountEvent
	if err := json.Unmarshal([]byte(message), &evt); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch evt.Event {
	case "user.deleted":
		if evt.UserID == 0 {
			return errors.New("user.deleted event without user_id")
		}
		if err := h.userRoleRepo.RevokeAll(ctx, evt.UserID); err != nil {
			return err
		}
		if err := h.tokenRepo.DeleteForUser(ctx, evt.UserID); err != nil {
			return err
		}
		if h.logger != nil {
			h.logger.Info("revoked assignments for deleted user", zap.Uint("user_id", evt.UserID))
		}
		return nil

	case "business.deleted":
		if evt.BusinessID == 0 {
			return errors.New("business.deleted event without business_id")
		}
		if err := h.businessRoleRepo.RevokeAll(ctx, evt.BusinessID); err != nil {
			return err
		}
		if err := h.tokenRepo.DeleteForBusiness(ctx, evt.BusinessID); err != nil {
			return err
		}
		if h.logger != nil {
			h.logger.Info("revoked assignments for deleted business", zap.Uint("business_id", evt.BusinessID))
		}
		return nil

	default:
		// Unknown events are not retried.
		return nil
	}
}
