package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/AratKruglik/wayforpay-go/internal/adapters/messaging/mock"
	"github.com/AratKruglik/wayforpay-go/internal/app"
	"github.com/AratKruglik/wayforpay-go/internal/config"
	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
	"github.com/AratKruglik/wayforpay-go/internal/observability"
)

// Demo tool: builds purchase transactions with fake customers and prints
// either the auto-submit redirect form or the raw signed payload.

var productNames = []string{
	"Standard subscription",
	"Premium subscription",
	"Gift card",
	"Delivery",
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config")
	count := flag.Int("count", 1, "Number of orders to generate")
	asJSON := flag.Bool("json", false, "Print the signed payload as JSON instead of the redirect form")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.WayForPay.Validate(); err != nil {
		log.Fatalf("invalid merchant configuration: %v", err)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	gateway := app.NewService(cfg.WayForPay, mock.NewDispatcher(logger), logger)

	for i := 0; i < *count; i++ {
		tx, err := fakeTransaction()
		if err != nil {
			log.Fatalf("failed to build transaction: %v", err)
		}

		if *asJSON {
			payload, err := gateway.PurchaseForm(tx, "", "")
			if err != nil {
				log.Fatalf("failed to build purchase payload: %v", err)
			}
			pretty, _ := json.MarshalIndent(payload, "", "  ")
			fmt.Println(string(pretty))
			continue
		}

		form, err := gateway.Purchase(tx, "", "")
		if err != nil {
			log.Fatalf("failed to render purchase form: %v", err)
		}
		fmt.Fprintln(os.Stdout, form)
	}
}

func fakeTransaction() (*domain.Transaction, error) {
	client, err := domain.NewClient(domain.ClientParams{
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		Email:     faker.Email(),
		Country:   "UA",
	})
	if err != nil {
		return nil, err
	}

	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "DEMO-" + uuid.NewString(),
		Amount:         float64(rand.Intn(100000)+100) / 100,
		Currency:       domain.CurrencyUAH,
		OrderDate:      time.Now().Unix(),
		Client:         client,
	})
	if err != nil {
		return nil, err
	}

	name := productNames[rand.Intn(len(productNames))]
	product, err := domain.NewProduct(name, tx.Amount(), 1)
	if err != nil {
		return nil, err
	}
	tx.AddProduct(product)
	return tx, nil
}
