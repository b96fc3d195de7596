package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoIdentity          = errors.New("sign in to place an order")
	ErrNoAddress           = errors.New("select a delivery address")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidPayment      = errors.New("payment method must be COD or BANKING")
	ErrSubmissionInFlight  = errors.New("an order is already being placed")
	ErrInsufficientStock   = errors.New("not enough stock")
	ErrAddressChanged      = errors.New("address changed before the shipping fee arrived")
	ErrShippingUnavailable = errors.New("could not compute the shipping fee")
)

const failureMessage = "Could not place your order, please try again"

// Phase is where the checkout flow currently stands.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseAddressSelected Phase = "address_selected"
	PhaseFeeComputed     Phase = "fee_computed"
	PhaseSubmitting      Phase = "submitting"
	PhaseSucceeded       Phase = "succeeded"
	PhaseFailed          Phase = "failed"
)

// View is the screen the UI should move to after a successful submission.
type View string

const (
	ViewConfirmation View = "confirmation"
	ViewPayment      View = "payment"
)

// Result is the outcome of a successful submission.
type Result struct {
	View       View   `json:"view"`
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl,omitempty"`
}

// OrderAPI creates orders and payment redirects.
type OrderAPI interface {
	CreateOrder(ctx context.Context, draft models.OrderDraft, idempotencyKey string) (models.Order, error)
	CreatePaymentURL(ctx context.Context, orderID string) (string, error)
}

// Geocoder turns an address line into a shipping quote.
type Geocoder interface {
	Quote(ctx context.Context, address string) (models.ShippingQuote, error)
}

// StockSource reads live stock for a dish.
type StockSource interface {
	AvailableQuantity(ctx context.Context, dishID string) (int, error)
}

// Identity reports the signed-in user, if any.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Cart     *cart.Store
	Coupons  *coupon.Book
	Orders   OrderAPI
	Geocoder Geocoder
	Stock    StockSource
	Identity Identity
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Orchestrator drives one checkout: address, shipping fee, submission and the
// branch on payment method.
type Orchestrator struct {
	cart     *cart.Store
	coupons  *coupon.Book
	orders   OrderAPI
	geocoder Geocoder
	stock    StockSource
	identity Identity
	notifier notify.Notifier
	log      *zap.Logger

	// stockConcurrency bounds parallel stock reads during submission.
	stockConcurrency int
	newKey           func() string

	submitting atomic.Bool

	mu         sync.RWMutex
	phase      Phase
	address    *models.Address
	addressSeq uint64
	quote      *models.ShippingQuote
	fee        decimal.Decimal
	result     *Result
}

func New(deps Deps) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cart:             deps.Cart,
		coupons:          deps.Coupons,
		orders:           deps.Orders,
		geocoder:         deps.Geocoder,
		stock:            deps.Stock,
		identity:         deps.Identity,
		notifier:         deps.Notifier,
		log:              log,
		stockConcurrency: 4,
		newKey:           uuid.NewString,
		phase:            PhaseIdle,
		fee:              decimal.Zero,
	}
}

// State is a read-only view of the orchestrator.
type State struct {
	Phase      Phase                 `json:"phase"`
	Address    *models.Address       `json:"address,omitempty"`
	Quote      *models.ShippingQuote `json:"quote,omitempty"`
	Submitting bool                  `json:"submitting"`
	Result     *Result               `json:"result,omitempty"`
}

func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := State{Phase: o.phase, Submitting: o.submitting.Load()}
	if o.address != nil {
		a := *o.address
		st.Address = &a
	}
	if o.quote != nil {
		q := *o.quote
		st.Quote = &q
	}
	if o.result != nil {
		r := *o.result
		st.Result = &r
	}
	return st
}

func (o *Orchestrator) Phase() Phase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.phase
}

// PaymentURL is the redirect stored by the last BANKING submission.
func (o *Orchestrator) PaymentURL() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.result == nil {
		return ""
	}
	return o.result.PaymentURL
}

// Reset returns to Idle and forgets the address, fee and last result.
// A lookup still in flight is discarded when it lands.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = PhaseIdle
	o.address = nil
	o.addressSeq++
	o.quote = nil
	o.fee = decimal.Zero
	o.result = nil
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func (o *Orchestrator) notifyError(msg string) {
	if o.notifier != nil {
		o.notifier.Error(msg)
	}
}

func (o *Orchestrator) notifySuccess(msg string) {
	if o.notifier != nil {
		o.notifier.Success(msg)
	}
}
