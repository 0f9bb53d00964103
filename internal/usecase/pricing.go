package usecase

import (
	"fmt"

	"travel-booking/internal/data/entity"
)

// Quote is the priced breakdown of a booking. All amounts are whole
// rupees. PayableNow + BalanceDue == TotalPrice always holds.
type Quote struct {
	TotalPrice int64
	PayableNow int64
	BalanceDue int64
}

// ComputeQuote prices a party. Pure and deterministic; the payment
// reconciliation check compares the captured amount against the
// PayableNow computed here at booking creation.
//
// Deposit bookings pay the token price per traveler up front and carry
// the rest as balance due; full bookings pay everything after discount.
func ComputeQuote(pricePerTraveler, depositPerTraveler int64, travelers int, option entity.PaymentOption, discount int64) (Quote, error) {
	if travelers < 1 {
		return Quote{}, fmt.Errorf("%w: traveler count must be at least 1", ErrInvalidInput)
	}
	if pricePerTraveler <= 0 {
		return Quote{}, fmt.Errorf("%w: package price must be positive", ErrInvalidInput)
	}
	if discount < 0 {
		return Quote{}, fmt.Errorf("%w: discount cannot be negative", ErrInvalidInput)
	}

	gross := pricePerTraveler * int64(travelers)
	if discount > gross {
		return Quote{}, fmt.Errorf("%w: discount %d exceeds trip price %d", ErrInvalidInput, discount, gross)
	}

	total := gross - discount

	var quote Quote
	switch option {
	case entity.PaymentOptionDeposit:
		payable := depositPerTraveler * int64(travelers)
		if payable <= 0 || payable > total {
			return Quote{}, fmt.Errorf("%w: deposit %d is not payable against total %d", ErrInvalidInput, payable, total)
		}
		quote = Quote{
			TotalPrice: total,
			PayableNow: payable,
			BalanceDue: total - payable,
		}
	case entity.PaymentOptionFull:
		if total <= 0 {
			return Quote{}, fmt.Errorf("%w: total %d is not payable", ErrInvalidInput, total)
		}
		quote = Quote{
			TotalPrice: total,
			PayableNow: total,
			BalanceDue: 0,
		}
	default:
		return Quote{}, fmt.Errorf("%w: unknown payment option %q", ErrInvalidInput, option)
	}

	return quote, nil
}
