package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"foodhub-be/internal/cart"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/metrics"
	"foodhub-be/internal/payment"
	"foodhub-be/internal/restaurant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MenuSource is the part of the restaurant store checkout relies on.
type MenuSource interface {
	MenusForCheckout(ctx context.Context, restaurantID uuid.UUID) ([]restaurant.Menu, error)
	OwnedRestaurantID(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)
}

type Service interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest, userID uuid.UUID) (*CheckoutSessionResult, error)
	// ConfirmPayment applies a processor session to its order. Both the
	// webhook and the verify endpoint go through here.
	ConfirmPayment(ctx context.Context, s *payment.Session) (*Order, error)
	VerifySession(ctx context.Context, sessionID string, userID uuid.UUID) (*Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListOrdersForRestaurant(ctx context.Context, ownerID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status Status) (*Order, error)
}

type service struct {
	repo    Repository
	menus   MenuSource
	gateway payment.Gateway
	stats   *metrics.Reconcile
}

func NewService(repo Repository, menus MenuSource, gateway payment.Gateway, stats *metrics.Reconcile) Service {
	if stats == nil {
		stats = &metrics.Reconcile{}
	}
	return &service{repo: repo, menus: menus, gateway: gateway, stats: stats}
}

func (s *service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest, userID uuid.UUID) (*CheckoutSessionResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCheckoutSession"),
		zap.String("user_id", userID.String()),
		zap.String("restaurant_id", req.RestaurantID.String()),
	)

	c, err := cart.FromItems(req.CartItems)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, cart.ErrCartEmpty
	}

	menus, err := s.menus.MenusForCheckout(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, ErrRestaurantNotFound
	}
	byID := make(map[uuid.UUID]restaurant.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	// prices always come from the stored menu, never from the cart
	priced := &cart.Cart{}
	items := make([]Item, 0, c.Len())
	lineItems := make([]payment.LineItem, 0, c.Len())
	for _, ci := range c.Items() {
		m, ok := byID[ci.MenuID]
		if !ok {
			log.Warn("cart references unknown menu", zap.String("menu_id", ci.MenuID.String()))
			return nil, ErrMenuNotFound
		}
		unitAmount, err := minorUnits(m.Price, ci.Quantity)
		if err != nil {
			log.Warn("line amount out of range", zap.String("menu_id", m.ID.String()), zap.Int64("price", m.Price))
			return nil, err
		}
		if err := priced.Add(cart.Item{MenuID: m.ID, Price: m.Price, Quantity: ci.Quantity}); err != nil {
			return nil, err
		}
		items = append(items, Item{
			MenuID:   m.ID,
			Name:     m.Name,
			Image:    m.ImageURL,
			Price:    m.Price,
			Quantity: ci.Quantity,
		})
		lineItems = append(lineItems, payment.LineItem{
			Name:       m.Name,
			Image:      m.ImageURL,
			UnitAmount: unitAmount,
			Quantity:   int64(ci.Quantity),
		})
	}

	subtotal := priced.Total()
	if subtotal < 0 || subtotal > maxMinorAmount/100 {
		log.Warn("order subtotal out of range", zap.Int64("subtotal", subtotal))
		return nil, ErrAmountTooLarge
	}
	if claimed := c.Total(); claimed != subtotal {
		log.Info("cart prices differ from stored menu", zap.Int64("claimed", claimed), zap.Int64("subtotal", subtotal))
	}

	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		RestaurantID:    req.RestaurantID,
		DeliveryDetails: req.DeliveryDetails,
		Items:           items,
		Status:          StatusPending,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	log = log.With(zap.String("order_id", o.ID.String()))

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		OrderID:       o.ID.String(),
		CustomerEmail: req.DeliveryDetails.Email,
		LineItems:     lineItems,
	})
	if err != nil {
		// the caller may have gone away, the pending order still has to go
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), o.ID); delErr != nil {
			log.Error("failed to delete order after processor error", zap.Error(delErr))
		}
		log.Error("processor rejected checkout session", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProcessor, err)
	}

	if err := s.repo.SetCheckoutSession(ctx, o.ID, sess.ID); err != nil {
		log.Error("failed to store checkout session id", zap.String("session_id", sess.ID), zap.Error(err))
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), o.ID); delErr != nil {
			log.Error("failed to delete order after session store error", zap.Error(delErr))
		}
		return nil, err
	}

	log.Info("checkout session created", zap.String("session_id", sess.ID), zap.Int64("subtotal", subtotal))
	return &CheckoutSessionResult{OrderID: o.ID, SessionID: sess.ID, URL: sess.URL}, nil
}

// maxMinorAmount bounds a single line in the processor's minor unit.
const maxMinorAmount = math.MaxInt64 / 2

// minorUnits converts a menu price to the processor's minor unit and checks
// that the line total still fits.
func minorUnits(price int64, quantity int) (int64, error) {
	if price <= 0 || price > maxMinorAmount/100 {
		return 0, ErrAmountTooLarge
	}
	unit := price * 100
	if int64(quantity) > maxMinorAmount/unit {
		return 0, ErrAmountTooLarge
	}
	return unit, nil
}

func (s *service) ConfirmPayment(ctx context.Context, sess *payment.Session) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
	)

	if sess == nil {
		s.stats.ConfirmFailed.Inc()
		return nil, ErrOrderNotFound
	}
	log = log.With(zap.String("session_id", sess.ID))

	id, err := uuid.Parse(sess.OrderID())
	if err != nil {
		log.Warn("session carries no usable order id", zap.String("order_id", sess.OrderID()))
		s.stats.ConfirmFailed.Inc()
		return nil, ErrOrderNotFound
	}
	log = log.With(zap.String("order_id", id.String()))

	if !sess.Paid() {
		log.Info("session not paid", zap.String("payment_status", sess.PaymentStatus))
		s.stats.ConfirmFailed.Inc()
		return nil, ErrPaymentNotCompleted
	}

	changed, err := s.repo.ConfirmPending(ctx, id, sess.AmountTotal)
	if err != nil {
		log.Error("failed to confirm order", zap.Error(err))
		s.stats.ConfirmFailed.Inc()
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			log.Error("failed to load order", zap.Error(err))
		}
		s.stats.ConfirmFailed.Inc()
		return nil, err
	}

	if changed {
		s.stats.OrdersConfirmed.Inc()
		log.Info("order confirmed", zap.Int64("total_amount", sess.AmountTotal))
	} else {
		log.Info("order already confirmed", zap.String("status", string(o.Status)))
	}
	return o, nil
}

func (s *service) VerifySession(ctx context.Context, sessionID string, userID uuid.UUID) (*Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, payment.ErrMissingSessionID
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	o, err := s.ConfirmPayment(ctx, sess)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListOrdersForRestaurant(ctx context.Context, ownerID uuid.UUID) ([]Order, error) {
	restaurantID, err := s.menus.OwnedRestaurantID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

func (s *service) UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	restaurantID, err := s.menus.OwnedRestaurantID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.RestaurantID != restaurantID {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(o.Status, status) {
		log.Info("rejected status change", zap.String("from", string(o.Status)))
		return nil, ErrInvalidTransition
	}

	ok, err := s.repo.UpdateStatus(ctx, orderID, restaurantID, o.Status, status)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}
	if !ok {
		// someone else moved it first
		return nil, ErrInvalidTransition
	}

	o.Status = status
	log.Info("order status updated")
	return o, nil
}
