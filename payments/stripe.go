// Package payments encapsule la création de sessions Stripe Checkout. La
// passerelle est consommée comme un appel externe opaque: pas de webhook ni de
// réconciliation ici.
package payments

import (
	"os"

	stripe "github.com/stripe/stripe-go/v82"
	session "github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutGateway crée une session de paiement pour un montant exprimé en
// unités mineures (centimes). Retourne l'identifiant de session à stocker.
type CheckoutGateway interface {
	CreateCheckoutSession(amountMinorUnits int64, currency, productName, payerEmail string) (sessionID string, url string, err error)
}

// StripeGateway est l'implémentation Checkout réelle. Les URLs de retour et la
// devise viennent de l'environnement.
type StripeGateway struct {
	SuccessURL string
	CancelURL  string
}

func NewStripeGateway() *StripeGateway {
	success := os.Getenv("STRIPE_SUCCESS_URL")
	if success == "" {
		success = "https://app.locaspace.fr/payment/success"
	}
	cancel := os.Getenv("STRIPE_CANCEL_URL")
	if cancel == "" {
		cancel = "https://app.locaspace.fr/payment/cancel"
	}
	return &StripeGateway{SuccessURL: success, CancelURL: cancel}
}

func (g *StripeGateway) CreateCheckoutSession(amountMinorUnits int64, currency, productName, payerEmail string) (string, string, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountMinorUnits),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(g.SuccessURL),
		CancelURL:     stripe.String(g.CancelURL),
		CustomerEmail: stripe.String(payerEmail),
	}

	s, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return s.ID, s.URL, nil
}

// Currency retourne la devise de facturation configurée (eur par défaut)
func Currency() string {
	if c := os.Getenv("STRIPE_CURRENCY"); c != "" {
		return c
	}
	return "eur"
}
