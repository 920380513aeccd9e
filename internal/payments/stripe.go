package payments

import (
	"context"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// StripeLister serves the payments page from recent Stripe PaymentIntents
// when an API key is configured.
type StripeLister struct {
	Limit int64
}

// NewStripeLister sets the package-level stripe key and returns a lister.
func NewStripeLister(apiKey string) *StripeLister {
	stripe.Key = apiKey
	return &StripeLister{Limit: 25}
}

func (s *StripeLister) Payments(ctx context.Context) ([]models.Payment, error) {
	params := &stripe.PaymentIntentListParams{}
	params.Limit = stripe.Int64(s.Limit)
	params.Context = ctx

	var out []models.Payment
	it := paymentintent.List(params)
	for it.Next() {
		pi := it.PaymentIntent()
		customer := pi.Description
		if pi.Customer != nil && pi.Customer.Name != "" {
			customer = pi.Customer.Name
		}
		out = append(out, models.Payment{
			ID:       pi.ID,
			Customer: customer,
			// stripe amounts are in the smallest currency unit
			Amount: float64(pi.Amount) / 100,
			Date:   time.Unix(pi.Created, 0).Format("2006-01-02"),
		})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Payment{}
	}
	return out, nil
}
