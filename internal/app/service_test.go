package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AratKruglik/wayforpay-go/internal/config"
	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
	"github.com/AratKruglik/wayforpay-go/internal/core/ports"
	"github.com/AratKruglik/wayforpay-go/internal/signature"
)

const (
	testAccount = "test_merch_n1"
	testDomain  = "www.market.ua"
	testSecret  = "flk3409refn54t54t*FNJRET"
)

// Mock - implementation of the dispatcher port
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, payload map[string]any) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func testMerchant() config.Merchant {
	return config.Merchant{
		Account:   testAccount,
		Domain:    testDomain,
		SecretKey: testSecret,
		Timeout:   5,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService points every endpoint at one httptest server and captures
// the last decoded request payload.
func newTestService(t *testing.T, status int, responseBody string) (*Service, *MockDispatcher, *map[string]any) {
	t.Helper()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(server.Close)

	dispatcher := new(MockDispatcher)
	svc := NewService(testMerchant(), dispatcher, testLogger(),
		WithEndpoints(Endpoints{
			API:        server.URL,
			Pay:        server.URL + "/pay",
			Verify:     server.URL + "/verify",
			RegularAPI: server.URL + "/regularApi",
		}),
	)
	return svc, dispatcher, &captured
}

func docTransaction(t *testing.T) *domain.Transaction {
	t.Helper()

	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "DH783023",
		Amount:         1547.36,
		Currency:       domain.CurrencyUAH,
		OrderDate:      1415379863,
	})
	require.NoError(t, err)

	p1, err := domain.NewProduct("Процесор Intel Core i5-4670 3.4GHz", 1000, 1)
	require.NoError(t, err)
	p2, err := domain.NewProduct("Пам'ять Kingston DDR3-1600 4096MB PC3-12800", 547.36, 1)
	require.NoError(t, err)
	tx.AddProduct(p1).AddProduct(p2)
	return tx
}

func TestPurchaseForm_SignsReferencePayload(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{}`)

	payload, err := svc.PurchaseForm(docTransaction(t), "", "")
	require.NoError(t, err)

	assert.Equal(t, "ee828f71ed93441c07eb3eef67762a5c", payload["merchantSignature"])
	assert.Equal(t, "SimpleSignature", payload["merchantAuthType"])
	assert.Equal(t, 49000, payload["orderTimeout"])
	assert.Equal(t, "card", payload["defaultPaymentSystem"])
	assert.Equal(t, []string{
		"Процесор Intel Core i5-4670 3.4GHz",
		"Пам'ять Kingston DDR3-1600 4096MB PC3-12800",
	}, payload["productName"])
}

func TestPurchaseForm_RejectsBadURLs(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{}`)
	tx := docTransaction(t)

	var verr *domain.ValidationError

	_, err := svc.PurchaseForm(tx, "not-a-url", "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "returnUrl", verr.Field)

	_, err = svc.PurchaseForm(tx, "", "ftp://example.com/hook")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "serviceUrl", verr.Field)
}

func TestPurchaseForm_FailsWithoutProducts(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{}`)

	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "ORD1",
		Amount:         10,
		Currency:       domain.CurrencyUAH,
		OrderDate:      1,
	})
	require.NoError(t, err)

	_, err = svc.PurchaseForm(tx, "", "")
	assert.ErrorIs(t, err, domain.ErrNoProducts)
}

func TestPurchase_RendersAutoSubmitForm(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{}`)

	form, err := svc.Purchase(docTransaction(t), "https://shop.example/return", "")
	require.NoError(t, err)

	assert.Contains(t, form, "<!DOCTYPE html>")
	assert.Contains(t, form, `id="wayforpay_form"`)
	// Array-valued fields emit one input per element under name[].
	assert.Contains(t, form, `name="productName[]" value="Процесор Intel Core i5-4670 3.4GHz"`)
	assert.Contains(t, form, `name="productPrice[]" value="1000"`)
	assert.Contains(t, form, `name="productPrice[]" value="547.36"`)
	assert.Contains(t, form, `name="merchantSignature" value="ee828f71ed93441c07eb3eef67762a5c"`)
	assert.Contains(t, form, `name="returnUrl" value="https://shop.example/return"`)
	assert.Contains(t, form, "document.getElementById('wayforpay_form').submit();")
}

func TestPurchase_EscapesValues(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{}`)

	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "ORD1",
		Amount:         10,
		Currency:       domain.CurrencyUAH,
		OrderDate:      1,
	})
	require.NoError(t, err)
	product, err := domain.NewProduct(`Socks <"black & white">`, 10, 1)
	require.NoError(t, err)
	tx.AddProduct(product)

	form, err := svc.Purchase(tx, "", "")
	require.NoError(t, err)

	assert.Contains(t, form, "Socks &lt;&#34;black &amp; white&#34;&gt;")
	assert.NotContains(t, form, `value="Socks <`)
}

func TestCheckStatus_SendsSignedRequest(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK,
		`{"reasonCode":1100,"orderReference":"ORD123","transactionStatus":"Approved"}`)

	response, err := svc.CheckStatus(context.Background(), "ORD123")
	require.NoError(t, err)

	payload := *captured
	assert.Equal(t, "CHECK_STATUS", payload["transactionType"])
	assert.Equal(t, testAccount, payload["merchantAccount"])
	assert.Equal(t, "b269dad960da334ed529ff86e1d63f9d", payload["merchantSignature"])
	assert.EqualValues(t, 1, payload["apiVersion"])

	assert.Equal(t, "Approved", response["transactionStatus"])
}

func TestRefund_GatewayDeclined(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{"reasonCode":1105}`)

	_, err := svc.Refund(context.Background(), "ORD123", 100.5, domain.CurrencyUAH, "customer request")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.ReasonInvalidCard, gwErr.Code)
	// No gateway message, so the canned description is used.
	assert.Equal(t, "Wrong card number or unallowable status", gwErr.Message)
	assert.NotNil(t, gwErr.Response)
}

func TestRefund_UsesGatewayMessageWhenPresent(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{"reasonCode":1101,"reason":"Issuer said no"}`)

	_, err := svc.Refund(context.Background(), "ORD123", 100.5, domain.CurrencyUAH, "")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Issuer said no", gwErr.Message)
}

func TestSend_TransportFailure(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusBadGateway, `upstream exploded`)

	_, err := svc.CheckStatus(context.Background(), "ORD123")

	var trErr *domain.TransportError
	require.ErrorAs(t, err, &trErr)
	assert.Equal(t, http.StatusBadGateway, trErr.StatusCode)
	assert.Equal(t, "upstream exploded", trErr.Body)
}

func TestVerifyCard_ReturnsURL(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK,
		`{"reasonCode":1100,"url":"https://secure.wayforpay.com/verify/abc"}`)

	url, err := svc.VerifyCard(context.Background(), "ORD123", "")
	require.NoError(t, err)
	assert.Equal(t, "https://secure.wayforpay.com/verify/abc", url)

	payload := *captured
	assert.EqualValues(t, 0, payload["amount"])
	assert.Equal(t, "UAH", payload["currency"])
	assert.Equal(t, "lookupCard", payload["paymentSystem"])
	assert.Equal(t, "a4d3d4531c93de99092928e3d671b30b", payload["merchantSignature"])
}

func TestVerifyCard_MissingURLKey(t *testing.T) {
	svc, _, _ := newTestService(t, http.StatusOK, `{"reasonCode":1100}`)

	_, err := svc.VerifyCard(context.Background(), "ORD123", domain.CurrencyUAH)

	var missing *domain.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "url", missing.Key)
}

func TestCharge_MergesCardAndClientFields(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":1100}`)

	client, err := domain.NewClient(domain.ClientParams{FirstName: "Olena", Email: "olena@example.com"})
	require.NoError(t, err)

	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "DH783023",
		Amount:         1547.36,
		Currency:       domain.CurrencyUAH,
		OrderDate:      1415379863,
		Client:         client,
	})
	require.NoError(t, err)
	p1, err := domain.NewProduct("Процесор Intel Core i5-4670 3.4GHz", 1000, 1)
	require.NoError(t, err)
	p2, err := domain.NewProduct("Пам'ять Kingston DDR3-1600 4096MB PC3-12800", 547.36, 1)
	require.NoError(t, err)
	tx.AddProduct(p1).AddProduct(p2)

	card, err := domain.NewCard("4111111111111111", "11", "29", "123", "")
	require.NoError(t, err)

	_, err = svc.Charge(context.Background(), tx, card, ports.ChargeOptions{})
	require.NoError(t, err)

	payload := *captured
	assert.Equal(t, "CHARGE", payload["transactionType"])
	assert.Equal(t, "SALE", payload["merchantTransactionType"])
	assert.Equal(t, "AUTO", payload["merchantTransactionSecureType"])
	assert.Equal(t, "4111111111111111", payload["card"])
	assert.Equal(t, "123", payload["cardCvv"])
	assert.Equal(t, "Olena", payload["clientFirstName"])
	// Client present and no IP supplied: the loopback default is injected.
	assert.Equal(t, "127.0.0.1", payload["clientIpAddress"])
	assert.Equal(t, "679a0d9bbcc415620266ce3e063f5208", payload["merchantSignature"])
}

func TestCharge_UsesSuppliedClientIP(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":1100}`)

	client, err := domain.NewClient(domain.ClientParams{FirstName: "Olena"})
	require.NoError(t, err)
	tx, err := domain.NewTransaction(domain.TransactionParams{
		OrderReference: "ORD1",
		Amount:         10,
		Currency:       domain.CurrencyUAH,
		OrderDate:      1,
		Client:         client,
	})
	require.NoError(t, err)
	product, err := domain.NewProduct("Socks", 10, 1)
	require.NoError(t, err)
	tx.AddProduct(product)

	card, err := domain.NewCard("4111111111111111", "11", "29", "123", "")
	require.NoError(t, err)

	_, err = svc.Charge(context.Background(), tx, card, ports.ChargeOptions{ClientIP: "203.0.113.7"})
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.7", (*captured)["clientIpAddress"])
}

func TestCharge_NoClientNoIPInjected(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":1100}`)

	tx := docTransaction(t)
	card, err := domain.NewCard("4111111111111111", "11", "29", "123", "")
	require.NoError(t, err)

	_, err = svc.Charge(context.Background(), tx, card, ports.ChargeOptions{})
	require.NoError(t, err)

	_, present := (*captured)["clientIpAddress"]
	assert.False(t, present)
}

func TestCreateInvoice_Payload(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":1100,"invoiceUrl":"https://invoice"}`)

	_, err := svc.CreateInvoice(context.Background(), docTransaction(t), "https://shop.example/hook")
	require.NoError(t, err)

	payload := *captured
	assert.Equal(t, "CREATE_INVOICE", payload["transactionType"])
	assert.EqualValues(t, 86400, payload["orderTimeout"])
	assert.EqualValues(t, 1, payload["apiVersion"])
	assert.Equal(t, "https://shop.example/hook", payload["serviceUrl"])
	assert.Equal(t, "ee828f71ed93441c07eb3eef67762a5c", payload["merchantSignature"])
}

func TestRemoveInvoice_SignsAccountAndReference(t *testing.T) {
	svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":1100}`)

	_, err := svc.RemoveInvoice(context.Background(), "ORD123")
	require.NoError(t, err)

	payload := *captured
	assert.Equal(t, "REMOVE_INVOICE", payload["transactionType"])
	assert.Equal(t, "b269dad960da334ed529ff86e1d63f9d", payload["merchantSignature"])
}

func TestRecurring_PasswordAuthWithoutSignature(t *testing.T) {
	for _, tc := range []struct {
		requestType string
		call        func(svc *Service) (map[string]any, error)
	}{
		{"SUSPEND", func(svc *Service) (map[string]any, error) {
			return svc.SuspendRecurring(context.Background(), "ORD123")
		}},
		{"RESUME", func(svc *Service) (map[string]any, error) {
			return svc.ResumeRecurring(context.Background(), "ORD123")
		}},
		{"REMOVE", func(svc *Service) (map[string]any, error) {
			return svc.RemoveRecurring(context.Background(), "ORD123")
		}},
	} {
		t.Run(tc.requestType, func(t *testing.T) {
			svc, _, captured := newTestService(t, http.StatusOK, `{"reasonCode":4100}`)

			_, err := tc.call(svc)
			require.NoError(t, err)

			payload := *captured
			assert.Equal(t, tc.requestType, payload["requestType"])
			// The subscription endpoint authenticates with the raw secret.
			assert.Equal(t, testSecret, payload["merchantPassword"])
			_, signed := payload["merchantSignature"]
			assert.False(t, signed)
		})
	}
}

func validWebhookPayload() map[string]any {
	signer := signature.New(testSecret)
	payload := map[string]any{
		"merchantAccount":   testAccount,
		"orderReference":    "ORD123",
		"amount":            "100.00",
		"currency":          "UAH",
		"authCode":          "123456",
		"cardPan":           "4111****1111",
		"transactionStatus": "Approved",
		"reasonCode":        "1100",
	}
	payload["merchantSignature"] = signer.ForServiceURL(signature.ServiceURLFields{
		MerchantAccount:   testAccount,
		OrderReference:    "ORD123",
		Amount:            "100.00",
		Currency:          "UAH",
		AuthCode:          "123456",
		CardPan:           "4111****1111",
		TransactionStatus: "Approved",
		ReasonCode:        "1100",
	})
	return payload
}

func TestHandleWebhook_RoundTrip(t *testing.T) {
	dispatcher := new(MockDispatcher)
	fixedNow := time.Unix(1415379863, 0)
	svc := NewService(testMerchant(), dispatcher, testLogger(),
		WithClock(func() time.Time { return fixedNow }),
	)

	payload := validWebhookPayload()
	dispatcher.On("Dispatch", mock.Anything, payload).Return(nil)

	ack, err := svc.HandleWebhook(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, "ORD123", ack.OrderReference)
	assert.Equal(t, "accept", ack.Status)
	assert.Equal(t, fixedNow.Unix(), ack.Time)
	assert.Equal(t, "d3bae7983fabc0ff0c8b0b82693c2886", ack.Signature)

	dispatcher.AssertExpectations(t)
}

func TestHandleWebhook_TamperedSignature(t *testing.T) {
	dispatcher := new(MockDispatcher)
	svc := NewService(testMerchant(), dispatcher, testLogger())

	payload := validWebhookPayload()
	payload["merchantSignature"] = "0000000000000000000000000000000"

	_, err := svc.HandleWebhook(context.Background(), payload)

	assert.ErrorIs(t, err, domain.ErrSignatureMismatch)
	var malformed *domain.MalformedWebhookError
	assert.False(t, strings.Contains(err.Error(), "missing"))
	assert.NotErrorAs(t, err, &malformed)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestHandleWebhook_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"merchantAccount", "orderReference", "transactionStatus", "merchantSignature"} {
		t.Run(field+" missing", func(t *testing.T) {
			dispatcher := new(MockDispatcher)
			svc := NewService(testMerchant(), dispatcher, testLogger())

			payload := validWebhookPayload()
			delete(payload, field)

			_, err := svc.HandleWebhook(context.Background(), payload)

			var malformed *domain.MalformedWebhookError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, field, malformed.Field)
		})

		t.Run(field+" empty", func(t *testing.T) {
			dispatcher := new(MockDispatcher)
			svc := NewService(testMerchant(), dispatcher, testLogger())

			payload := validWebhookPayload()
			payload[field] = ""

			_, err := svc.HandleWebhook(context.Background(), payload)

			var malformed *domain.MalformedWebhookError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, field, malformed.Field)
		})
	}
}

func TestHandleWebhook_NumericAmountMatchesSignature(t *testing.T) {
	// The gateway decodes JSON numbers to float64; the recomputed digest must
	// render them the same way the gateway signed them.
	signer := signature.New(testSecret)
	payload := map[string]any{
		"merchantAccount":   testAccount,
		"orderReference":    "ORD123",
		"amount":            float64(100),
		"currency":          "UAH",
		"transactionStatus": "Approved",
		"reasonCode":        float64(1100),
	}
	payload["merchantSignature"] = signer.ForServiceURL(signature.ServiceURLFields{
		MerchantAccount:   testAccount,
		OrderReference:    "ORD123",
		Amount:            "100",
		Currency:          "UAH",
		TransactionStatus: "Approved",
		ReasonCode:        "1100",
	})

	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, payload).Return(nil)
	svc := NewService(testMerchant(), dispatcher, testLogger())

	_, err := svc.HandleWebhook(context.Background(), payload)
	assert.NoError(t, err)
}
