package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/cart"
	"golang.org/x/sync/errgroup"
)

// checkStock re-reads availability for every dish in the cart and rejects the
// cart when the quantity of a dish, summed over its slots, exceeds it.
func (o *Orchestrator) checkStock(ctx context.Context, snapshot cart.State) error {
	if o.stock == nil {
		return nil
	}

	wanted := snapshot.Quantities()
	fresh := make(map[string]int, len(wanted))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.stockConcurrency)
	for dishID := range wanted {
		dishID := dishID
		g.Go(func() error {
			n, err := o.stock.AvailableQuantity(gctx, dishID)
			if err != nil {
				return fmt.Errorf("read stock of %s: %w", dishID, err)
			}
			mu.Lock()
			fresh[dishID] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// walk items so the first offending dish is reported in cart order
	for _, it := range snapshot.Items() {
		if want, have := wanted[it.DishID], fresh[it.DishID]; want > have {
			return fmt.Errorf("%w: only %d left of %s", ErrInsufficientStock, have, it.Name)
		}
	}
	return nil
}

func isStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
