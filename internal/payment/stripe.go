package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"travel-booking/pkg/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const metadataBookingID = "booking_id"

// StripeGateway drives Stripe PaymentIntents. Amounts cross the wire in
// paise; the rest of the engine works in whole rupees.
type StripeGateway struct {
	publishableKey string
	webhookSecret  string
	currency       string
	log            *zap.Logger
}

func NewStripeGateway(cfg utils.StripeConfig, log *zap.Logger) *StripeGateway {
	stripe.Key = cfg.SecretKey

	return &StripeGateway{
		publishableKey: cfg.PublishableKey,
		webhookSecret:  cfg.WebhookSecret,
		currency:       cfg.Currency,
		log:            log.With(zap.String("gateway", "stripe")),
	}
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, bookingID string, amount int64) (*Checkout, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				metadataBookingID: bookingID,
			},
		},
		Amount:   stripe.Int64(amount * 100),
		Currency: stripe.String(g.currency),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		g.log.Error("Failed to create payment intent",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.Int64("amount", amount),
		)
		return nil, fmt.Errorf("create payment intent for booking %s: %w", bookingID, err)
	}

	g.log.Info("Payment intent created",
		zap.String("booking_id", bookingID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", amount),
	)

	return &Checkout{
		Reference:      intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: g.publishableKey,
		Amount:         amount,
		Currency:       g.currency,
	}, nil
}

func (g *StripeGateway) ParseCallback(payload []byte, signature string) (*Callback, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.log.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		// Stripe sends many lifecycle events; only settlement outcomes
		// drive reconciliation.
		return nil, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("decode payment intent event: %w", err)
	}

	callback := &Callback{
		BookingID: intent.Metadata[metadataBookingID],
		Reference: intent.ID,
		Succeeded: event.Type == "payment_intent.succeeded",
	}

	// Paise pass through untouched; reconciliation compares in the
	// minor unit.
	if callback.Succeeded {
		callback.Amount = intent.AmountReceived
	} else {
		callback.Amount = intent.Amount
		if intent.LastPaymentError != nil {
			callback.FailureMsg = intent.LastPaymentError.Msg
		}
	}

	return callback, nil
}
