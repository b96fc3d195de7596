package checkout

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"go.uber.org/zap"
)

// Submit places the order for the current cart.
//
// Missing identity, address or items are rejected before any network call.
// Once those pass, the applied coupon is cleared when Submit returns, whether
// the order went through or not. Live stock is then re-read and the order is
// created; BANKING orders also get a payment redirect. On success the cart is
// emptied. On any failure the cart is kept and the phase is Failed.
func (o *Orchestrator) Submit(ctx context.Context, method models.PaymentMethod) (Result, error) {
	if !method.Valid() {
		o.notifyError("Choose a payment method")
		return Result{}, ErrInvalidPayment
	}
	if !o.submitting.CompareAndSwap(false, true) {
		return Result{}, ErrSubmissionInFlight
	}
	defer o.submitting.Store(false)

	userID, address, snapshot, err := o.preconditions(ctx)
	if err != nil {
		o.notifyError(err.Error())
		return Result{}, err
	}

	// The coupon is dropped even when the order fails.
	defer o.coupons.Clear()

	o.mu.Lock()
	o.phase = PhaseSubmitting
	o.result = nil
	fee := o.fee
	o.mu.Unlock()

	if err := o.checkStock(ctx, snapshot); err != nil {
		return Result{}, o.fail(err)
	}

	draft := models.OrderDraft{
		UserID:        userID,
		AddressID:     address.ID,
		Items:         draftItems(snapshot),
		PaymentMethod: method,
		ShippingFee:   fee,
	}
	if c, ok := o.coupons.Applied(); ok && o.coupons.Discount(snapshot.Subtotal()).IsPositive() {
		id := c.ID
		draft.CouponID = &id
	}

	key := o.newKey()
	order, err := o.orders.CreateOrder(ctx, draft, key)
	if err != nil {
		return Result{}, o.fail(fmt.Errorf("create order: %w", err))
	}

	res := Result{View: ViewConfirmation, OrderID: order.ID}
	if method == models.PaymentBanking {
		url, err := o.orders.CreatePaymentURL(ctx, order.ID)
		if err != nil {
			return Result{}, o.fail(fmt.Errorf("create payment url for order %s: %w", order.ID, err))
		}
		res.View = ViewPayment
		res.PaymentURL = url
	}

	o.cart.Clear(ctx)

	o.mu.Lock()
	o.phase = PhaseSucceeded
	r := res
	o.result = &r
	o.mu.Unlock()

	o.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("payment_method", string(method)),
		zap.String("idempotency_key", key),
	)
	o.notifySuccess("Order placed")
	return res, nil
}

func (o *Orchestrator) preconditions(ctx context.Context) (string, models.Address, cart.State, error) {
	userID, ok := "", false
	if o.identity != nil {
		userID, ok = o.identity.CurrentUserID(ctx)
	}
	if !ok || userID == "" {
		return "", models.Address{}, cart.State{}, ErrNoIdentity
	}

	o.mu.RLock()
	var address *models.Address
	if o.address != nil {
		a := *o.address
		address = &a
	}
	o.mu.RUnlock()
	if address == nil {
		return "", models.Address{}, cart.State{}, ErrNoAddress
	}

	snapshot := o.cart.Snapshot()
	if snapshot.IsEmpty() {
		return "", models.Address{}, cart.State{}, ErrEmptyCart
	}
	return userID, *address, snapshot, nil
}

func (o *Orchestrator) fail(err error) error {
	o.log.Error("checkout failed", zap.Error(err))
	o.setPhase(PhaseFailed)
	if isStockError(err) {
		o.notifyError(err.Error())
	} else {
		o.notifyError(failureMessage)
	}
	return err
}

func draftItems(s cart.State) []models.OrderDraftItem {
	items := s.Items()
	out := make([]models.OrderDraftItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.OrderDraftItem{
			DishID:    it.DishID,
			Quantity:  it.Quantity,
			OptionIDs: it.OptionIDs(),
		})
	}
	return out
}
