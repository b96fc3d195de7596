package cart

import (
	"cmp"
	"slices"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
)

// Canonical returns a sorted copy of the selection, ordered by group id then
// option id. Slot comparison only ever looks at canonical selections, so the
// order in which options were picked does not matter.
func Canonical(selection []models.SelectedOption) []models.SelectedOption {
	out := slices.Clone(selection)
	if out == nil {
		out = []models.SelectedOption{}
	}
	slices.SortFunc(out, func(a, b models.SelectedOption) int {
		if c := cmp.Compare(a.GroupID, b.GroupID); c != 0 {
			return c
		}
		return cmp.Compare(a.OptionID, b.OptionID)
	})
	return out
}

// SameSelection compares two selections by their (group id, option id) pairs.
func SameSelection(a, b []models.SelectedOption) bool {
	if len(a) != len(b) {
		return false
	}
	ca, cb := Canonical(a), Canonical(b)
	return slices.EqualFunc(ca, cb, func(x, y models.SelectedOption) bool {
		return x.GroupID == y.GroupID && x.OptionID == y.OptionID
	})
}

// SameSlot reports whether two line items occupy the same cart slot.
func SameSlot(a, b models.CartLineItem) bool {
	return a.DishID == b.DishID && SameSelection(a.SelectedOptions, b.SelectedOptions)
}
