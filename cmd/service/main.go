package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/reviewmaestro/payments-backend/api"
	"github.com/reviewmaestro/payments-backend/log"
	"github.com/reviewmaestro/payments-backend/stripe"
)

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.String("log-output", "stdout", "log output (stdout, stderr or filepath)")
	flag.String("stripe-api-secret", "", "Stripe secret API key")
	flag.String("stripe-publishable-key", "", "Stripe publishable key served to the frontend")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("starter-monthly-price-id", "", "price ID for the starter monthly plan")
	flag.String("starter-yearly-price-id", "", "price ID for the starter yearly plan")
	flag.String("professional-monthly-price-id", "", "price ID for the professional monthly plan")
	flag.String("professional-yearly-price-id", "", "price ID for the professional yearly plan")
	flag.Int64("trial-period-days", stripe.DefaultTrialPeriodDays, "free trial length for new subscriptions")
	flag.String("portal-return-url", "", "default return URL for customer portal sessions")
	flag.StringSlice("cors-origins", []string{"*"}, "allowed CORS origins")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("REVIEWMAESTRO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	log.Init(viper.GetString("log-level"), viper.GetString("log-output"))

	apiSecret := viper.GetString("stripe-api-secret")
	if apiSecret == "" {
		log.Fatal("stripe-api-secret is required")
	}
	publishableKey := viper.GetString("stripe-publishable-key")
	if publishableKey == "" {
		log.Fatal("stripe-publishable-key is required")
	}
	webhookSecret := viper.GetString("stripe-webhook-secret")
	if webhookSecret == "" {
		log.Warn("stripe-webhook-secret is empty, webhook deliveries will be rejected")
	}

	// initialize the Stripe service
	stripeService, err := stripe.NewService(&stripe.Config{
		APIKey:         apiSecret,
		PublishableKey: publishableKey,
		WebhookSecret:  webhookSecret,
		PriceIDs: map[string]string{
			stripe.PlanKey(stripe.PlanStarter, stripe.BillingCycleMonthly):      viper.GetString("starter-monthly-price-id"),
			stripe.PlanKey(stripe.PlanStarter, stripe.BillingCycleYearly):       viper.GetString("starter-yearly-price-id"),
			stripe.PlanKey(stripe.PlanProfessional, stripe.BillingCycleMonthly): viper.GetString("professional-monthly-price-id"),
			stripe.PlanKey(stripe.PlanProfessional, stripe.BillingCycleYearly):  viper.GetString("professional-yearly-price-id"),
		},
		TrialPeriodDays: viper.GetInt64("trial-period-days"),
		PortalReturnURL: viper.GetString("portal-return-url"),
	})
	if err != nil {
		log.Fatalf("could not create the Stripe service: %v", err)
	}
	// verify the API key against Stripe before accepting traffic
	account, err := stripeService.Ping()
	if err != nil {
		log.Fatalf("could not connect to Stripe: %v", err)
	}
	log.Infow("connected to Stripe", "account", account.ID)

	// create the local API server
	api.New(&api.Config{
		Host:        host,
		Port:        port,
		CORSOrigins: viper.GetStringSlice("cors-origins"),
		Stripe:      stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
