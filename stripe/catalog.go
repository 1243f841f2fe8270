package stripe

import (
	stripeapi "github.com/stripe/stripe-go/v82"

	"github.com/reviewmaestro/payments-backend/log"
)

// productSpec describes one catalog product and its recurring prices.
type productSpec struct {
	Plan        string
	Name        string
	Description string
	Features    string
	Prices      []priceSpec
}

// priceSpec describes one recurring price of a product. Amounts are in
// cents.
type priceSpec struct {
	BillingCycle string
	UnitAmount   int64
	Nickname     string
}

// catalogProducts is the full ReviewMaestro catalog. Yearly amounts carry a
// 30% discount over twelve monthly payments.
var catalogProducts = []productSpec{
	{
		Plan:        PlanStarter,
		Name:        "ReviewMaestro Starter",
		Description: "Perfect for single restaurants - Up to 100 reviews/month with AI analysis and response generation",
		Features:    "100 reviews/month, AI sentiment analysis, Basic response templates, Email support",
		Prices: []priceSpec{
			{BillingCycle: BillingCycleMonthly, UnitAmount: 1900, Nickname: "Starter Monthly"},
			{BillingCycle: BillingCycleYearly, UnitAmount: 15600, Nickname: "Starter Yearly"},
		},
	},
	{
		Plan:        PlanProfessional,
		Name:        "ReviewMaestro Professional",
		Description: "For growing restaurants - Up to 1,000 reviews/month with advanced features and priority support",
		Features:    "1,000 reviews/month, Advanced AI analysis, Custom response generation, Priority support, Analytics dashboard",
		Prices: []priceSpec{
			{BillingCycle: BillingCycleMonthly, UnitAmount: 9900, Nickname: "Professional Monthly"},
			{BillingCycle: BillingCycleYearly, UnitAmount: 82800, Nickname: "Professional Yearly"},
		},
	},
}

// ProvisionedPrice is one price created by ProvisionCatalog, together with
// the plan key the service resolves it under.
type ProvisionedPrice struct {
	Plan         string
	BillingCycle string
	ProductID    string
	PriceID      string
	UnitAmount   int64
}

// PlanKey returns the price table key this price is resolved under.
func (p *ProvisionedPrice) PlanKey() string {
	return PlanKey(p.Plan, p.BillingCycle)
}

// ProvisionCatalog creates the ReviewMaestro products and their recurring
// prices in Stripe. It is a one-shot provisioning operation run from
// cmd/catalog; it does not check for pre-existing products, so running it
// twice creates duplicates.
func (s *Service) ProvisionCatalog() ([]ProvisionedPrice, error) {
	var provisioned []ProvisionedPrice

	for _, spec := range catalogProducts {
		product, err := s.client.CreateProduct(&stripeapi.ProductParams{
			Name:        stripeapi.String(spec.Name),
			Description: stripeapi.String(spec.Description),
			Metadata: map[string]string{
				"plan_type": spec.Plan,
				"features":  spec.Features,
			},
		})
		if err != nil {
			return nil, err
		}
		log.Infof("product created: %s (%s)", product.ID, spec.Name)

		for _, priceSpec := range spec.Prices {
			price, err := s.client.CreatePrice(&stripeapi.PriceParams{
				Product:    stripeapi.String(product.ID),
				UnitAmount: stripeapi.Int64(priceSpec.UnitAmount),
				Currency:   stripeapi.String(string(stripeapi.CurrencyUSD)),
				Recurring: &stripeapi.PriceRecurringParams{
					Interval: stripeapi.String(recurringInterval(priceSpec.BillingCycle)),
				},
				Nickname: stripeapi.String(priceSpec.Nickname),
				Metadata: map[string]string{
					"plan":    spec.Plan,
					"billing": priceSpec.BillingCycle,
				},
			})
			if err != nil {
				return nil, err
			}
			log.Infof("price created: %s (%s)", price.ID, priceSpec.Nickname)

			provisioned = append(provisioned, ProvisionedPrice{
				Plan:         spec.Plan,
				BillingCycle: priceSpec.BillingCycle,
				ProductID:    product.ID,
				PriceID:      price.ID,
				UnitAmount:   priceSpec.UnitAmount,
			})
		}
	}
	return provisioned, nil
}

// recurringInterval maps a billing cycle tag onto the Stripe price interval.
func recurringInterval(billingCycle string) string {
	if billingCycle == BillingCycleYearly {
		return string(stripeapi.PriceRecurringIntervalYear)
	}
	return string(stripeapi.PriceRecurringIntervalMonth)
}
