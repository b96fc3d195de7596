package checkout

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"go.uber.org/zap"
)

// SelectAddress records the delivery address and looks up its shipping fee.
//
// A lookup that fails keeps the previous fee. A lookup that completes after
// another address was selected (or the flow was reset) is discarded and
// ErrAddressChanged is returned.
func (o *Orchestrator) SelectAddress(ctx context.Context, address models.Address) (models.ShippingQuote, error) {
	if o.submitting.Load() {
		return models.ShippingQuote{}, ErrSubmissionInFlight
	}

	o.mu.Lock()
	o.addressSeq++
	seq := o.addressSeq
	a := address
	o.address = &a
	o.phase = PhaseAddressSelected
	o.result = nil
	o.mu.Unlock()

	quote, err := o.geocoder.Quote(ctx, address.Line())

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.addressSeq {
		o.log.Debug("discarding shipping quote for a replaced address", zap.String("address_id", address.ID))
		return models.ShippingQuote{}, ErrAddressChanged
	}
	if err != nil {
		o.log.Warn("shipping fee lookup failed", zap.String("address_id", address.ID), zap.Error(err))
		o.notifyError("Could not compute the shipping fee for this address")
		return models.ShippingQuote{}, fmt.Errorf("%w: %w", ErrShippingUnavailable, err)
	}

	q := quote
	o.quote = &q
	o.fee = quote.Fee
	o.phase = PhaseFeeComputed
	return quote, nil
}
