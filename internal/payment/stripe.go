// Package payment creates hosted checkout sessions. The checkout flow
// itself is the provider's; this side only obtains the redirect URL and
// encodes the outcome query parameters the app recovers from.
package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	checkout "github.com/stripe/stripe-go/v79/checkout/session"
)

// Bridge requests a hosted checkout session and returns the URL the
// browser must be redirected to.
type Bridge interface {
	CreateCheckoutSession(ctx context.Context) (string, error)
}

// BridgeError is a user-visible checkout-session failure. The app stays
// on the payment screen; the user retries explicitly.
type BridgeError struct {
	Err error
}

func (e *BridgeError) Error() string { return fmt.Sprintf("checkout session failed: %v", e.Err) }
func (e *BridgeError) Unwrap() error { return e.Err }

// StripeBridge creates one-time-payment Checkout sessions. Every payment
// affordance in the UI funnels into this single operation.
type StripeBridge struct {
	PublicURL   string
	PriceCents  int64
	Currency    string
	ProductName string
}

func NewStripeBridge(secretKey, publicURL string, priceCents int64, currency, productName string) *StripeBridge {
	stripe.Key = secretKey
	return &StripeBridge{
		PublicURL:   publicURL,
		PriceCents:  priceCents,
		Currency:    currency,
		ProductName: productName,
	}
}

func (b *StripeBridge) CreateCheckoutSession(ctx context.Context) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(b.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(b.ProductName),
					},
					UnitAmount: stripe.Int64(b.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(b.PublicURL + "/?payment=success"),
		CancelURL:  stripe.String(b.PublicURL + "/?payment=cancel"),
	}

	sess, err := checkout.New(params)
	if err != nil {
		return "", &BridgeError{Err: err}
	}
	if sess.URL == "" {
		return "", &BridgeError{Err: fmt.Errorf("no redirect url in checkout session")}
	}
	return sess.URL, nil
}
