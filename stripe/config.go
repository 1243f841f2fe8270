package stripe

import (
	"fmt"
)

// Plan names and billing cycles accepted by the API. They mirror the keys of
// the price table created by cmd/catalog.
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"

	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// DefaultTrialPeriodDays is the free trial granted to new subscriptions.
const DefaultTrialPeriodDays = 14

// Config holds the Stripe credentials and price catalog. It is built once at
// startup and read-only afterwards.
type Config struct {
	APIKey          string
	PublishableKey  string
	WebhookSecret   string
	PriceIDs        map[string]string // keyed by "<plan>_<billing_cycle>"
	TrialPeriodDays int64
	PortalReturnURL string
}

// PlanKey builds the price table key for a plan and billing cycle combination.
func PlanKey(plan, billingCycle string) string {
	return fmt.Sprintf("%s_%s", plan, billingCycle)
}

// PriceID resolves a plan and billing cycle combination against the
// configured price table. The second return value is false when the
// combination is unknown or has no price configured.
func (c *Config) PriceID(plan, billingCycle string) (string, bool) {
	priceID, ok := c.PriceIDs[PlanKey(plan, billingCycle)]
	return priceID, ok && priceID != ""
}
