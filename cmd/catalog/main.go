// Command catalog provisions the ReviewMaestro products and recurring prices
// in a Stripe account and prints the environment variables to configure the
// service with the created price IDs. It is a one-shot setup tool; running it
// twice against the same account creates duplicate products.
package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/reviewmaestro/payments-backend/log"
	"github.com/reviewmaestro/payments-backend/stripe"
)

func main() {
	flag.String("stripe-api-secret", "", "Stripe secret API key")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	viper.SetEnvPrefix("REVIEWMAESTRO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	log.Init(viper.GetString("log-level"), "stdout")

	apiSecret := viper.GetString("stripe-api-secret")
	if apiSecret == "" {
		log.Fatal("stripe-api-secret is required")
	}

	service, err := stripe.NewService(&stripe.Config{APIKey: apiSecret})
	if err != nil {
		log.Fatalf("could not create the Stripe service: %v", err)
	}
	account, err := service.Ping()
	if err != nil {
		log.Fatalf("could not connect to Stripe: %v", err)
	}
	log.Infow("connected to Stripe", "account", account.ID)

	prices, err := service.ProvisionCatalog()
	if err != nil {
		log.Fatalf("could not provision the catalog: %v", err)
	}

	fmt.Println("# add these to the service environment:")
	for _, price := range prices {
		fmt.Printf("REVIEWMAESTRO_%s_PRICE_ID=%s\n", strings.ToUpper(price.PlanKey()), price.PriceID)
	}
}
