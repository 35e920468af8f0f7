package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AratKruglik/wayforpay-go/internal/config"
	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
	"github.com/AratKruglik/wayforpay-go/internal/core/ports"
	"github.com/AratKruglik/wayforpay-go/internal/signature"
)

// Endpoints are the gateway URLs one Service talks to. Overridable for tests.
type Endpoints struct {
	API        string
	Pay        string
	Verify     string
	RegularAPI string
}

// DefaultEndpoints points at the production gateway.
var DefaultEndpoints = Endpoints{
	API:        "https://api.wayforpay.com/api",
	Pay:        "https://secure.wayforpay.com/pay",
	Verify:     "https://secure.wayforpay.com/verify",
	RegularAPI: "https://api.wayforpay.com/regularApi",
}

// Service is the gateway client: it assembles request fields, signs them,
// sends the payload and interprets the response. Every field is set at
// construction and never written afterwards, so one Service may be shared
// across goroutines.
type Service struct {
	merchant   config.Merchant
	signer     *signature.Generator
	httpClient ports.HTTPDoer
	dispatcher ports.CallbackDispatcher
	logger     *slog.Logger
	endpoints  Endpoints
	now        func() time.Time
}

type Option func(*Service)

// WithHTTPClient swaps the transport. The default is an *http.Client with the
// configured timeout.
func WithHTTPClient(doer ports.HTTPDoer) Option {
	return func(s *Service) { s.httpClient = doer }
}

// WithEndpoints redirects the service at other gateway URLs.
func WithEndpoints(e Endpoints) Option {
	return func(s *Service) { s.endpoints = e }
}

// WithClock replaces the time source used for webhook acknowledgements.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the gateway client from its dependencies.
func NewService(merchant config.Merchant, dispatcher ports.CallbackDispatcher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		merchant:   merchant,
		signer:     signature.New(merchant.SecretKey),
		dispatcher: dispatcher,
		logger:     logger,
		endpoints:  DefaultEndpoints,
		now:        time.Now,
	}
	s.httpClient = &http.Client{Timeout: time.Duration(merchant.Timeout) * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Gateway = (*Service)(nil)

// Purchase builds the signed hosted-payment-page payload and renders it as a
// self-submitting HTML form for browser flows.
func (s *Service) Purchase(tx *domain.Transaction, returnURL, serviceURL string) (string, error) {
	payload, err := s.PurchaseForm(tx, returnURL, serviceURL)
	if err != nil {
		return "", err
	}
	return renderAutoSubmitForm(s.endpoints.Pay, payload), nil
}

// PurchaseForm returns the raw signed purchase payload for callers that POST
// it themselves to obtain the hosted-page URL.
func (s *Service) PurchaseForm(tx *domain.Transaction, returnURL, serviceURL string) (map[string]any, error) {
	data, sigFields, err := s.transactionFields(tx)
	if err != nil {
		return nil, err
	}

	data["merchantAuthType"] = "SimpleSignature"
	data["merchantSignature"] = s.signer.ForPurchase(sigFields)
	data["orderTimeout"] = 49000
	data["defaultPaymentSystem"] = "card"

	if client := tx.Client(); client != nil {
		mergeFields(data, client.Fields())
	}
	if returnURL != "" {
		if err := validateURL(returnURL, "returnUrl"); err != nil {
			return nil, err
		}
		data["returnUrl"] = returnURL
	}
	if serviceURL != "" {
		if err := validateURL(serviceURL, "serviceUrl"); err != nil {
			return nil, err
		}
		data["serviceUrl"] = serviceURL
	}
	return data, nil
}

// CreateInvoice asks the gateway to issue a remote invoice for the
// transaction.
func (s *Service) CreateInvoice(ctx context.Context, tx *domain.Transaction, serviceURL string) (map[string]any, error) {
	data, sigFields, err := s.transactionFields(tx)
	if err != nil {
		return nil, err
	}

	data["transactionType"] = "CREATE_INVOICE"
	data["apiVersion"] = 1
	data["merchantAuthType"] = "SimpleSignature"
	data["merchantSignature"] = s.signer.ForPurchase(sigFields)
	data["orderTimeout"] = 86400

	if client := tx.Client(); client != nil {
		mergeFields(data, client.Fields())
	}
	if serviceURL != "" {
		data["serviceUrl"] = serviceURL
	}
	return s.send(ctx, s.endpoints.API, data)
}

// RemoveInvoice cancels a previously issued invoice.
func (s *Service) RemoveInvoice(ctx context.Context, orderReference string) (map[string]any, error) {
	data := map[string]any{
		"transactionType":   "REMOVE_INVOICE",
		"merchantAccount":   s.merchant.Account,
		"orderReference":    orderReference,
		"apiVersion":        1,
		"merchantSignature": s.signer.ForRemoveInvoice(s.merchant.Account, orderReference),
	}
	return s.send(ctx, s.endpoints.API, data)
}

// Charge performs a server-side card charge.
func (s *Service) Charge(ctx context.Context, tx *domain.Transaction, card *domain.Card, opts ports.ChargeOptions) (map[string]any, error) {
	data, sigFields, err := s.transactionFields(tx)
	if err != nil {
		return nil, err
	}

	data["transactionType"] = "CHARGE"
	data["merchantTransactionType"] = "SALE"
	data["merchantTransactionSecureType"] = "AUTO"
	data["apiVersion"] = 1

	mergeFields(data, card.Fields())
	data["merchantSignature"] = s.signer.ForCharge(signature.ChargeFields{
		PurchaseFields: sigFields,
		Card: &signature.CardFields{
			Number:   card.Number(),
			ExpMonth: card.ExpMonth(),
			ExpYear:  card.ExpYear(),
			CVV:      card.CVV(),
			Holder:   card.Holder(),
		},
	})

	if client := tx.Client(); client != nil {
		mergeFields(data, client.Fields())
		if _, ok := data["clientIpAddress"]; !ok {
			ip := opts.ClientIP
			if ip == "" {
				ip = "127.0.0.1"
			}
			data["clientIpAddress"] = ip
		}
	}
	if opts.ServiceURL != "" {
		data["serviceUrl"] = opts.ServiceURL
	}
	return s.send(ctx, s.endpoints.API, data)
}

// CheckStatus fetches the current lifecycle state of an order.
func (s *Service) CheckStatus(ctx context.Context, orderReference string) (map[string]any, error) {
	data := map[string]any{
		"transactionType":   "CHECK_STATUS",
		"merchantAccount":   s.merchant.Account,
		"orderReference":    orderReference,
		"apiVersion":        1,
		"merchantSignature": s.signer.ForCheckStatus(s.merchant.Account, orderReference),
	}
	return s.send(ctx, s.endpoints.API, data)
}

// Refund returns money for a settled order, fully or partially.
func (s *Service) Refund(ctx context.Context, orderReference string, amount float64, currency domain.Currency, comment string) (map[string]any, error) {
	data := map[string]any{
		"transactionType":   "REFUND",
		"merchantAccount":   s.merchant.Account,
		"orderReference":    orderReference,
		"amount":            amount,
		"currency":          string(currency),
		"comment":           comment,
		"apiVersion":        1,
		"merchantSignature": s.signer.ForRefund(s.merchant.Account, orderReference, amount, string(currency)),
	}
	return s.send(ctx, s.endpoints.API, data)
}

// P2PCredit transfers funds to a beneficiary card or rec-token.
func (s *Service) P2PCredit(ctx context.Context, orderReference string, amount float64, currency domain.Currency, cardBeneficiary, rec2Token string) (map[string]any, error) {
	data := map[string]any{
		"transactionType": "P2P_CREDIT",
		"merchantAccount": s.merchant.Account,
		"orderReference":  orderReference,
		"amount":          amount,
		"currency":        string(currency),
		"cardBeneficiary": cardBeneficiary,
		"apiVersion":      1,
		"merchantSignature": s.signer.ForP2PCredit(
			s.merchant.Account, orderReference, amount, string(currency), cardBeneficiary, rec2Token),
	}
	if rec2Token != "" {
		data["rec2Token"] = rec2Token
	}
	return s.send(ctx, s.endpoints.API, data)
}

// Settle confirms a previously authorized amount.
func (s *Service) Settle(ctx context.Context, orderReference string, amount float64, currency domain.Currency) (map[string]any, error) {
	data := map[string]any{
		"transactionType":   "SETTLE",
		"merchantAccount":   s.merchant.Account,
		"orderReference":    orderReference,
		"amount":            amount,
		"currency":          string(currency),
		"apiVersion":        1,
		"merchantSignature": s.signer.ForSettle(s.merchant.Account, orderReference, amount, string(currency)),
	}
	return s.send(ctx, s.endpoints.API, data)
}

// VerifyCard runs the zero-amount card-verification flow and returns the
// gateway-issued verification URL.
func (s *Service) VerifyCard(ctx context.Context, orderReference string, currency domain.Currency) (string, error) {
	if currency == "" {
		currency = domain.CurrencyUAH
	}
	data := map[string]any{
		"merchantAccount":    s.merchant.Account,
		"merchantDomainName": s.merchant.Domain,
		"orderReference":     orderReference,
		"amount":             0,
		"currency":           string(currency),
		"apiVersion":         1,
		"paymentSystem":      "lookupCard",
		"merchantSignature": s.signer.ForVerify(
			s.merchant.Account, s.merchant.Domain, orderReference, 0, string(currency)),
	}

	body, err := s.send(ctx, s.endpoints.Verify, data)
	if err != nil {
		return "", err
	}
	verifyURL, ok := body["url"].(string)
	if !ok || verifyURL == "" {
		return "", &domain.MissingFieldError{Key: "url"}
	}
	return verifyURL, nil
}

// SuspendRecurring pauses a subscription schedule.
func (s *Service) SuspendRecurring(ctx context.Context, orderReference string) (map[string]any, error) {
	return s.sendRegular(ctx, "SUSPEND", orderReference)
}

// ResumeRecurring reactivates a suspended subscription schedule.
func (s *Service) ResumeRecurring(ctx context.Context, orderReference string) (map[string]any, error) {
	return s.sendRegular(ctx, "RESUME", orderReference)
}

// RemoveRecurring deletes a subscription schedule.
func (s *Service) RemoveRecurring(ctx context.Context, orderReference string) (map[string]any, error) {
	return s.sendRegular(ctx, "REMOVE", orderReference)
}

// sendRegular talks to the subscription-management endpoint. That endpoint
// authenticates with the raw secret as merchantPassword and expects no
// signature; the live gateway rejects requests that carry one.
func (s *Service) sendRegular(ctx context.Context, requestType, orderReference string) (map[string]any, error) {
	data := map[string]any{
		"requestType":      requestType,
		"merchantAccount":  s.merchant.Account,
		"merchantPassword": s.merchant.SecretKey,
		"orderReference":   orderReference,
	}
	return s.send(ctx, s.endpoints.RegularAPI, data)
}

// webhookRequiredFields are checked in this order before any signature work.
var webhookRequiredFields = []string{
	"merchantAccount",
	"orderReference",
	"transactionStatus",
	"merchantSignature",
}

// HandleWebhook validates an inbound gateway callback, verifies its
// signature, hands the raw payload to the dispatcher and returns the signed
// acknowledgement.
func (s *Service) HandleWebhook(ctx context.Context, payload map[string]any) (*ports.WebhookAck, error) {
	for _, field := range webhookRequiredFields {
		if fieldString(payload, field) == "" {
			return nil, &domain.MalformedWebhookError{Field: field}
		}
	}

	ok := s.signer.VerifyServiceURL(signature.ServiceURLFields{
		MerchantAccount:   fieldString(payload, "merchantAccount"),
		OrderReference:    fieldString(payload, "orderReference"),
		Amount:            fieldString(payload, "amount"),
		Currency:          fieldString(payload, "currency"),
		AuthCode:          fieldString(payload, "authCode"),
		CardPan:           fieldString(payload, "cardPan"),
		TransactionStatus: fieldString(payload, "transactionStatus"),
		ReasonCode:        fieldString(payload, "reasonCode"),
	}, fieldString(payload, "merchantSignature"))
	if !ok {
		return nil, domain.ErrSignatureMismatch
	}

	if err := s.dispatcher.Dispatch(ctx, payload); err != nil {
		return nil, fmt.Errorf("dispatching webhook callback: %w", err)
	}

	orderReference := fieldString(payload, "orderReference")
	now := s.now().Unix()
	status := string(domain.StatusAccept)

	return &ports.WebhookAck{
		OrderReference: orderReference,
		Status:         status,
		Time:           now,
		Signature:      s.signer.ResponseSignature(orderReference, status, now),
	}, nil
}

// transactionFields flattens a transaction into the common request fields and
// the matching signature input.
func (s *Service) transactionFields(tx *domain.Transaction) (map[string]any, signature.PurchaseFields, error) {
	products, err := tx.Products()
	if err != nil {
		return nil, signature.PurchaseFields{}, err
	}

	names := make([]string, len(products))
	counts := make([]int, len(products))
	prices := make([]float64, len(products))
	for i, p := range products {
		names[i] = p.Name()
		counts[i] = p.Count()
		prices[i] = p.Price()
	}

	data := map[string]any{
		"merchantAccount":    s.merchant.Account,
		"merchantDomainName": s.merchant.Domain,
		"orderReference":     tx.OrderReference(),
		"orderDate":          tx.OrderDate(),
		"amount":             tx.Amount(),
		"currency":           string(tx.Currency()),
		"productName":        names,
		"productCount":       counts,
		"productPrice":       prices,
	}
	mergeFields(data, tx.OptionalFields())

	sigFields := signature.PurchaseFields{
		MerchantAccount:    s.merchant.Account,
		MerchantDomainName: s.merchant.Domain,
		OrderReference:     tx.OrderReference(),
		OrderDate:          tx.OrderDate(),
		Amount:             tx.Amount(),
		Currency:           string(tx.Currency()),
		ProductNames:       names,
		ProductCounts:      counts,
		ProductPrices:      prices,
	}
	return data, sigFields, nil
}

// send POSTs the payload as JSON and interprets the response. A non-2xx
// result is a transport failure; a 2xx body with a known non-success reason
// code is a gateway-reported failure.
func (s *Service) send(ctx context.Context, endpoint string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding gateway request: %w", err)
	}

	if s.merchant.Debug {
		s.logger.Debug("gateway request", "url", endpoint, "payload", string(body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}

	if s.merchant.Debug {
		s.logger.Debug("gateway response", "url", endpoint, "status", resp.StatusCode, "body", string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var decoded map[string]any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}

	if raw, exists := decoded["reasonCode"]; exists {
		code := domain.ReasonCode(intValue(raw))
		if code.Known() && !code.IsSuccess() {
			message, _ := decoded["reason"].(string)
			if message == "" {
				message = code.Description()
			}
			return nil, &domain.GatewayError{Code: code, Message: message, Response: decoded}
		}
	}

	return decoded, nil
}

// validateURL accepts only well-formed absolute http(s) URLs.
func validateURL(raw, paramName string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &domain.ValidationError{Field: paramName, Message: "must be a valid http(s) URL"}
	}
	return nil
}

func mergeFields(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

// fieldString renders one webhook payload value the way the gateway signed
// it. JSON numbers decode as float64 and take the same shortest-form
// rendering used for outbound amounts. Absent keys become the empty string,
// which keeps its slot in the digest.
func fieldString(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return signature.FormatAmount(val)
	case int:
		return signature.FormatAmount(float64(val))
	case int64:
		return signature.FormatAmount(float64(val))
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func intValue(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case json.Number:
		n, _ := val.Int64()
		return int(n)
	case string:
		var n int
		fmt.Sscanf(val, "%d", &n)
		return n
	default:
		return 0
	}
}
