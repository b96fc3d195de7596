package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrUnknownOption   = errors.New("option is not offered for this dish")
	ErrMissingOption   = errors.New("a required option is missing")
	ErrTooManyOptions  = errors.New("too many options picked in one group")
	ErrDuplicateOption = errors.New("option picked twice")
)

// OptionChoice names one picked option of a dish.
type OptionChoice struct {
	GroupID  string `json:"groupId"`
	OptionID string `json:"optionId"`
}

// AddToCartRequest is what the dish detail screen submits.
type AddToCartRequest struct {
	DishID   string         `json:"dishId"`
	Quantity int            `json:"quantity"`
	Options  []OptionChoice `json:"options"`
}

// DishSource reads dishes by id.
type DishSource interface {
	GetDish(ctx context.Context, id string) (models.Dish, error)
}

// CartService turns catalog picks into cart line items
type CartService struct {
	dishes DishSource
	cart   *cart.Store
}

// NewCartService creates a new cart service
func NewCartService(dishes DishSource, store *cart.Store) *CartService {
	return &CartService{
		dishes: dishes,
		cart:   store,
	}
}

// Snapshot returns the current cart state.
func (s *CartService) Snapshot() cart.State {
	return s.cart.Snapshot()
}

// AddDish resolves the picked options against the dish and adds the result
// to the cart. Price and stock are frozen at this moment.
func (s *CartService) AddDish(ctx context.Context, req AddToCartRequest) (cart.State, error) {
	if req.Quantity <= 0 {
		return s.cart.Snapshot(), ErrInvalidQuantity
	}

	dish, err := s.dishes.GetDish(ctx, req.DishID)
	if err != nil {
		return s.cart.Snapshot(), err
	}

	selection, err := resolveOptions(dish, req.Options)
	if err != nil {
		return s.cart.Snapshot(), err
	}

	return s.cart.Add(ctx, models.CartLineItem{
		DishID:            dish.ID,
		Name:              dish.Name,
		ImageURL:          dish.ImageURL,
		UnitPrice:         dish.Price,
		SelectedOptions:   selection,
		Quantity:          req.Quantity,
		AvailableQuantity: dish.AvailableQuantity,
	})
}

// UpdateQuantity sets the quantity of a slot; zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, dishID string, choices []OptionChoice, quantity int) (cart.State, error) {
	return s.cart.UpdateQuantity(ctx, dishID, slotKey(choices), quantity)
}

func (s *CartService) Remove(ctx context.Context, dishID string, choices []OptionChoice) cart.State {
	return s.cart.Remove(ctx, dishID, slotKey(choices))
}

func (s *CartService) Clear(ctx context.Context) cart.State {
	return s.cart.Clear(ctx)
}

// slotKey builds a selection that only carries the identity of each choice,
// which is all slot lookup compares.
func slotKey(choices []OptionChoice) []models.SelectedOption {
	out := make([]models.SelectedOption, 0, len(choices))
	for _, c := range choices {
		out = append(out, models.SelectedOption{GroupID: c.GroupID, OptionID: c.OptionID})
	}
	return out
}

func resolveOptions(dish models.Dish, choices []OptionChoice) ([]models.SelectedOption, error) {
	groups := make(map[string]models.OptionGroup, len(dish.OptionGroups))
	for _, g := range dish.OptionGroups {
		groups[g.ID] = g
	}

	picked := make(map[string]int, len(groups))
	seen := make(map[OptionChoice]bool, len(choices))
	selection := make([]models.SelectedOption, 0, len(choices))

	for _, c := range choices {
		if seen[c] {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateOption, c.GroupID, c.OptionID)
		}
		seen[c] = true

		g, ok := groups[c.GroupID]
		if !ok {
			return nil, fmt.Errorf("%w: group %s", ErrUnknownOption, c.GroupID)
		}
		o, ok := g.Find(c.OptionID)
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownOption, c.GroupID, c.OptionID)
		}

		picked[g.ID]++
		if picked[g.ID] > g.Limit() {
			return nil, fmt.Errorf("%w: %s allows %d", ErrTooManyOptions, g.Name, g.Limit())
		}

		selection = append(selection, models.SelectedOption{
			GroupID:         g.ID,
			GroupName:       g.Name,
			OptionID:        o.ID,
			OptionName:      o.Name,
			AdditionalPrice: o.AdditionalPrice,
		})
	}

	for _, g := range dish.OptionGroups {
		if g.Required && picked[g.ID] == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingOption, g.Name)
		}
	}
	return selection, nil
}
