package services

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type OrderService interface {
	// GetOrderStatus returns ErrOrderNotFound both for unknown sessions and
	// for sessions that belong to someone else.
	GetOrderStatus(ctx context.Context, caller *Caller, sessionID string) (*response_models.OrderStatusResponse, error)
}

type orderService struct {
	orderRepo repositories.OrderRepository
}

func NewOrderService(orderRepo repositories.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) GetOrderStatus(ctx context.Context, caller *Caller, sessionID string) (*response_models.OrderStatusResponse, error) {
	if caller == nil {
		return nil, utils.ErrUnauthorized
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, utils.ErrMissingSessionID
	}

	order, err := s.orderRepo.FindForUser(ctx, sessionID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: order lookup: %v", utils.ErrDatabaseError, err)
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}

	resp := &response_models.OrderStatusResponse{
		ID:               order.ID.String(),
		StripeSessionID:  order.StripeSessionID,
		AmountTotalCents: order.AmountTotalCents,
		Currency:         order.Currency,
		Status:           string(order.Status),
		PaymentStatus:    order.PaymentStatus,
		CreatedAt:        order.CreatedAt,
		Items:            make([]response_models.OrderItemResponse, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		item := response_models.OrderItemResponse{
			Name:            it.NameSnapshot,
			UnitAmountCents: it.UnitAmountCents,
			Qty:             it.Qty,
			Currency:        it.Currency,
		}
		if it.ProductID != nil {
			id := it.ProductID.String()
			item.ProductID = &id
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}
