package ports

import (
	"context"
	"net/http"

	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
)

// HTTPDoer is the outgoing transport port. The production implementation is
// *http.Client; tests inject their own.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallbackDispatcher is an outgoing port used to hand a verified webhook
// payload to external code. Implementations may publish to a broker, fire an
// in-process event, or just log.
type CallbackDispatcher interface {
	Dispatch(ctx context.Context, payload map[string]any) error
}

// WebhookAck is the acknowledgement returned to the gateway after a verified
// callback. Signature covers orderReference, status and time.
type WebhookAck struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
	Time           int64  `json:"time"`
	Signature      string `json:"signature"`
}

// ChargeOptions carries the optional inputs of a Charge call.
type ChargeOptions struct {
	ServiceURL string
	// ClientIP is injected into the payload as clientIpAddress when the
	// transaction carries a client and no IP was set.
	ClientIP string
}

// Gateway is the incoming port: every operation the payment gateway client
// supports. Each call is one signed (or, for the recurring family,
// password-authenticated) request/response round-trip.
type Gateway interface {
	Purchase(tx *domain.Transaction, returnURL, serviceURL string) (string, error)
	PurchaseForm(tx *domain.Transaction, returnURL, serviceURL string) (map[string]any, error)

	CreateInvoice(ctx context.Context, tx *domain.Transaction, serviceURL string) (map[string]any, error)
	RemoveInvoice(ctx context.Context, orderReference string) (map[string]any, error)

	Charge(ctx context.Context, tx *domain.Transaction, card *domain.Card, opts ChargeOptions) (map[string]any, error)
	CheckStatus(ctx context.Context, orderReference string) (map[string]any, error)
	Refund(ctx context.Context, orderReference string, amount float64, currency domain.Currency, comment string) (map[string]any, error)
	P2PCredit(ctx context.Context, orderReference string, amount float64, currency domain.Currency, cardBeneficiary, rec2Token string) (map[string]any, error)
	Settle(ctx context.Context, orderReference string, amount float64, currency domain.Currency) (map[string]any, error)
	VerifyCard(ctx context.Context, orderReference string, currency domain.Currency) (string, error)

	SuspendRecurring(ctx context.Context, orderReference string) (map[string]any, error)
	ResumeRecurring(ctx context.Context, orderReference string) (map[string]any, error)
	RemoveRecurring(ctx context.Context, orderReference string) (map[string]any, error)

	HandleWebhook(ctx context.Context, payload map[string]any) (*WebhookAck, error)
}
