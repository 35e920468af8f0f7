package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AratKruglik/wayforpay-go/internal/adapters/messaging/mock"
	"github.com/AratKruglik/wayforpay-go/internal/app"
	"github.com/AratKruglik/wayforpay-go/internal/config"
	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
	"github.com/AratKruglik/wayforpay-go/internal/observability"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

func main() {
	var configPath string
	var amount float64
	var currency string
	var comment string
	var cardBeneficiary string
	var rec2Token string

	newGateway := func() *app.Service {
		cfg, err := config.Load(configPath)
		if err != nil {
			failColor.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.WayForPay.Validate(); err != nil {
			failColor.Fprintf(os.Stderr, "invalid merchant configuration: %v\n", err)
			os.Exit(1)
		}
		logger := observability.SetupLogger(cfg.App.Env)
		return app.NewService(cfg.WayForPay, mock.NewDispatcher(logger), logger)
	}

	run := func(call func(ctx context.Context, gw *app.Service) (map[string]any, error)) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		response, err := call(ctx, newGateway())
		if err != nil {
			failColor.Fprintf(os.Stderr, "request failed: %v\n", err)
			os.Exit(1)
		}
		pretty, _ := json.MarshalIndent(response, "", "  ")
		okColor.Println("gateway accepted the request")
		fmt.Println(string(pretty))
	}

	rootCmd := &cobra.Command{Use: "wayforpay-cli", Short: "Operator CLI for the WayForPay gateway"}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the YAML config")

	statusCmd := &cobra.Command{
		Use:   "status <orderReference>",
		Short: "Check the lifecycle status of an order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
				return gw.CheckStatus(ctx, args[0])
			})
		},
	}

	refundCmd := &cobra.Command{
		Use:   "refund <orderReference>",
		Short: "Refund a settled order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
				return gw.Refund(ctx, args[0], amount, domain.Currency(currency), comment)
			})
		},
	}
	refundCmd.Flags().Float64Var(&amount, "amount", 0, "Amount to refund")
	refundCmd.Flags().StringVar(&currency, "currency", "UAH", "Refund currency")
	refundCmd.Flags().StringVar(&comment, "comment", "", "Refund comment")

	settleCmd := &cobra.Command{
		Use:   "settle <orderReference>",
		Short: "Confirm a previously authorized amount",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
				return gw.Settle(ctx, args[0], amount, domain.Currency(currency))
			})
		},
	}
	settleCmd.Flags().Float64Var(&amount, "amount", 0, "Amount to settle")
	settleCmd.Flags().StringVar(&currency, "currency", "UAH", "Settlement currency")

	p2pCmd := &cobra.Command{
		Use:   "p2p-credit <orderReference>",
		Short: "Credit funds to a beneficiary card",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
				return gw.P2PCredit(ctx, args[0], amount, domain.Currency(currency), cardBeneficiary, rec2Token)
			})
		},
	}
	p2pCmd.Flags().Float64Var(&amount, "amount", 0, "Amount to credit")
	p2pCmd.Flags().StringVar(&currency, "currency", "UAH", "Credit currency")
	p2pCmd.Flags().StringVar(&cardBeneficiary, "card", "", "Beneficiary card number")
	p2pCmd.Flags().StringVar(&rec2Token, "rec2-token", "", "Beneficiary rec-token")

	verifyCmd := &cobra.Command{
		Use:   "verify-card <orderReference>",
		Short: "Start the zero-amount card-verification flow",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			url, err := newGateway().VerifyCard(ctx, args[0], domain.Currency(currency))
			if err != nil {
				failColor.Fprintf(os.Stderr, "request failed: %v\n", err)
				os.Exit(1)
			}
			okColor.Println("verification url issued")
			fmt.Println(url)
		},
	}
	verifyCmd.Flags().StringVar(&currency, "currency", "UAH", "Verification currency")

	removeInvoiceCmd := &cobra.Command{
		Use:   "remove-invoice <orderReference>",
		Short: "Cancel a previously issued invoice",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
				return gw.RemoveInvoice(ctx, args[0])
			})
		},
	}

	recurringCmd := &cobra.Command{Use: "recurring", Short: "Manage subscription schedules"}
	for _, sub := range []struct {
		use  string
		call func(ctx context.Context, gw *app.Service, ref string) (map[string]any, error)
	}{
		{"suspend", func(ctx context.Context, gw *app.Service, ref string) (map[string]any, error) {
			return gw.SuspendRecurring(ctx, ref)
		}},
		{"resume", func(ctx context.Context, gw *app.Service, ref string) (map[string]any, error) {
			return gw.ResumeRecurring(ctx, ref)
		}},
		{"remove", func(ctx context.Context, gw *app.Service, ref string) (map[string]any, error) {
			return gw.RemoveRecurring(ctx, ref)
		}},
	} {
		call := sub.call
		recurringCmd.AddCommand(&cobra.Command{
			Use:   sub.use + " <orderReference>",
			Short: sub.use + " a subscription schedule",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				run(func(ctx context.Context, gw *app.Service) (map[string]any, error) {
					return call(ctx, gw, args[0])
				})
			},
		})
	}

	rootCmd.AddCommand(statusCmd, refundCmd, settleCmd, p2pCmd, verifyCmd, removeInvoiceCmd, recurringCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
