package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem      = errors.New("cart item must reference a dish")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrExceedsAvailable = errors.New("quantity exceeds available stock")
	ErrSlotNotFound     = errors.New("item not in cart")
)

// StatusKind is the outcome of the last cart transition.
type StatusKind string

const (
	StatusIdle      StatusKind = "idle"
	StatusSucceeded StatusKind = "succeeded"
	StatusFailed    StatusKind = "failed"
)

type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

// State is an immutable cart snapshot. Every transition returns a new State.
type State struct {
	items  []models.CartLineItem
	status Status
}

// NewState builds a state from already-validated items, e.g. a persisted
// snapshot. Slots that would collide are merged.
func NewState(items ...models.CartLineItem) State {
	s := State{status: Status{Kind: StatusIdle}}
	for _, it := range items {
		if it.DishID == "" || it.Quantity < 1 {
			continue
		}
		if idx := s.find(it.DishID, it.SelectedOptions); idx >= 0 {
			s.items[idx].Quantity += it.Quantity
			continue
		}
		s.items = append(s.items, normalize(it))
	}
	return s
}

// Items returns a deep copy of the slots in insertion order.
func (s State) Items() []models.CartLineItem {
	out := make([]models.CartLineItem, len(s.items))
	for i, it := range s.items {
		it.SelectedOptions = slices.Clone(it.SelectedOptions)
		out[i] = it
	}
	return out
}

func (s State) Status() Status { return s.status }

func (s State) Len() int { return len(s.items) }

func (s State) IsEmpty() bool { return len(s.items) == 0 }

// QuantityOf sums the quantity of a dish across all of its slots.
func (s State) QuantityOf(dishID string) int {
	total := 0
	for _, it := range s.items {
		if it.DishID == dishID {
			total += it.Quantity
		}
	}
	return total
}

// Quantities maps each dish id to its total quantity.
func (s State) Quantities() map[string]int {
	out := make(map[string]int, len(s.items))
	for _, it := range s.items {
		out[it.DishID] += it.Quantity
	}
	return out
}

// Subtotal is the sum of every slot's line total.
func (s State) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Find returns the slot for a dish and selection.
func (s State) Find(dishID string, selection []models.SelectedOption) (models.CartLineItem, bool) {
	idx := s.find(dishID, selection)
	if idx < 0 {
		return models.CartLineItem{}, false
	}
	it := s.items[idx]
	it.SelectedOptions = slices.Clone(it.SelectedOptions)
	return it, true
}

func (s State) find(dishID string, selection []models.SelectedOption) int {
	for i, it := range s.items {
		if it.DishID == dishID && SameSelection(it.SelectedOptions, selection) {
			return i
		}
	}
	return -1
}

func (s State) with(items []models.CartLineItem, status Status) State {
	return State{items: items, status: status}
}

func (s State) failed(err error) State {
	return State{items: s.items, status: Status{Kind: StatusFailed, Message: err.Error()}}
}

func normalize(it models.CartLineItem) models.CartLineItem {
	it.SelectedOptions = Canonical(it.SelectedOptions)
	return it
}

// Add puts an item into the cart. The dish's quantity across all slots plus
// the requested quantity must fit in item.AvailableQuantity; otherwise the
// state keeps its items and gets a failed status. A merged slot takes the
// newer AvailableQuantity.
func Add(s State, item models.CartLineItem) (State, error) {
	if item.DishID == "" {
		return s.failed(ErrInvalidItem), ErrInvalidItem
	}
	if item.Quantity < 1 {
		return s.failed(ErrInvalidQuantity), ErrInvalidQuantity
	}

	existing := s.QuantityOf(item.DishID)
	if existing+item.Quantity > item.AvailableQuantity {
		err := fmt.Errorf("%w: %d in cart, %d requested, %d available",
			ErrExceedsAvailable, existing, item.Quantity, item.AvailableQuantity)
		return s.failed(err), err
	}

	items := slices.Clone(s.items)
	if idx := s.find(item.DishID, item.SelectedOptions); idx >= 0 {
		items[idx].Quantity += item.Quantity
		items[idx].AvailableQuantity = item.AvailableQuantity
	} else {
		items = append(items, normalize(item))
	}

	return s.with(items, Status{Kind: StatusSucceeded, Message: "added to cart"}), nil
}

// UpdateQuantity sets the quantity of a slot. Zero or less removes it; values
// above the slot's AvailableQuantity are rejected.
func UpdateQuantity(s State, dishID string, selection []models.SelectedOption, quantity int) (State, error) {
	idx := s.find(dishID, selection)
	if idx < 0 {
		return s.failed(ErrSlotNotFound), ErrSlotNotFound
	}

	if quantity <= 0 {
		items := slices.Delete(slices.Clone(s.items), idx, idx+1)
		return s.with(items, Status{Kind: StatusSucceeded, Message: "removed from cart"}), nil
	}

	if available := s.items[idx].AvailableQuantity; quantity > available {
		err := fmt.Errorf("%w: %d requested, %d available", ErrExceedsAvailable, quantity, available)
		return s.failed(err), err
	}

	items := slices.Clone(s.items)
	items[idx].Quantity = quantity
	return s.with(items, Status{Kind: StatusSucceeded, Message: "quantity updated"}), nil
}

// Remove deletes a slot. Removing a slot that does not exist is a no-op.
func Remove(s State, dishID string, selection []models.SelectedOption) State {
	idx := s.find(dishID, selection)
	if idx < 0 {
		return s
	}
	items := slices.Delete(slices.Clone(s.items), idx, idx+1)
	return s.with(items, Status{Kind: StatusSucceeded, Message: "removed from cart"})
}

// Clear empties the cart and resets the status.
func Clear(State) State {
	return State{status: Status{Kind: StatusIdle}}
}
