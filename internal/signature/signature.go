// Package signature implements the gateway's request-authentication digest:
// HMAC-MD5 over a semicolon-joined, operation-specific field sequence. The
// scheme is data integrity over a shared secret, not collision resistance;
// what matters is reproducing the gateway's reference byte stream exactly,
// so field order and number formatting are load-bearing.
package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// Generator computes and verifies digests with one merchant secret. It is
// stateless apart from the secret and safe for concurrent use.
type Generator struct {
	secret []byte
}

func New(secretKey string) *Generator {
	return &Generator{secret: []byte(secretKey)}
}

// Generate joins the fields with ";" and returns the hex HMAC-MD5 digest.
func (g *Generator) Generate(fields []string) string {
	mac := hmac.New(md5.New, g.secret)
	mac.Write([]byte(strings.Join(fields, ";")))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest and compares in constant time.
func (g *Generator) Verify(fields []string, signature string) bool {
	return hmac.Equal([]byte(g.Generate(fields)), []byte(signature))
}

// FormatAmount renders a monetary value the way the gateway's reference
// implementation does: shortest form, no trailing ".0" (1547.36 -> "1547.36",
// 1000 -> "1000", 0 -> "0").
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PurchaseFields is the input of the purchase/invoice digest. The three
// product slices run parallel and each is flattened with ";" before being
// appended as one field.
type PurchaseFields struct {
	MerchantAccount    string
	MerchantDomainName string
	OrderReference     string
	OrderDate          int64
	Amount             float64
	Currency           string
	ProductNames       []string
	ProductCounts      []int
	ProductPrices      []float64
}

// ForPurchase covers both Purchase and CreateInvoice:
// merchantAccount;merchantDomainName;orderReference;orderDate;amount;currency;
// productName...;productCount...;productPrice...
func (g *Generator) ForPurchase(f PurchaseFields) string {
	fields := []string{
		f.MerchantAccount,
		f.MerchantDomainName,
		f.OrderReference,
		strconv.FormatInt(f.OrderDate, 10),
		FormatAmount(f.Amount),
		f.Currency,
	}
	fields = append(fields, joinProducts(f.ProductNames, f.ProductCounts, f.ProductPrices)...)
	return g.Generate(fields)
}

// CardFields is the card block spliced into the charge digest when a card is
// present. Holder keeps its slot as an empty string when absent; the gateway
// signs that empty slot.
type CardFields struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVV      string
	Holder   string
}

// ChargeFields is PurchaseFields plus an optional card block.
type ChargeFields struct {
	PurchaseFields
	Card *CardFields
}

// ForCharge: the purchase sequence with the card block (card, expMonth,
// expYear, cvv, holder-or-empty) inserted before the product arrays.
func (g *Generator) ForCharge(f ChargeFields) string {
	fields := []string{
		f.MerchantAccount,
		f.MerchantDomainName,
		f.OrderReference,
		strconv.FormatInt(f.OrderDate, 10),
		FormatAmount(f.Amount),
		f.Currency,
	}
	if f.Card != nil {
		fields = append(fields, f.Card.Number, f.Card.ExpMonth, f.Card.ExpYear, f.Card.CVV, f.Card.Holder)
	}
	fields = append(fields, joinProducts(f.ProductNames, f.ProductCounts, f.ProductPrices)...)
	return g.Generate(fields)
}

// ForRefund: merchantAccount;orderReference;amount;currency. Settle signs the
// same sequence.
func (g *Generator) ForRefund(merchantAccount, orderReference string, amount float64, currency string) string {
	return g.Generate([]string{merchantAccount, orderReference, FormatAmount(amount), currency})
}

// ForSettle signs the refund sequence.
func (g *Generator) ForSettle(merchantAccount, orderReference string, amount float64, currency string) string {
	return g.ForRefund(merchantAccount, orderReference, amount, currency)
}

// ForCheckStatus: merchantAccount;orderReference. RemoveInvoice signs the
// same pair.
func (g *Generator) ForCheckStatus(merchantAccount, orderReference string) string {
	return g.Generate([]string{merchantAccount, orderReference})
}

// ForRemoveInvoice signs the check-status pair.
func (g *Generator) ForRemoveInvoice(merchantAccount, orderReference string) string {
	return g.ForCheckStatus(merchantAccount, orderReference)
}

// ForP2PCredit: merchantAccount;orderReference;amount;currency;
// cardBeneficiary;rec2Token. The last two keep their slots as empty strings
// when absent.
func (g *Generator) ForP2PCredit(merchantAccount, orderReference string, amount float64, currency, cardBeneficiary, rec2Token string) string {
	return g.Generate([]string{
		merchantAccount,
		orderReference,
		FormatAmount(amount),
		currency,
		cardBeneficiary,
		rec2Token,
	})
}

// ForVerify: merchantAccount;merchantDomainName;orderReference;amount;currency.
func (g *Generator) ForVerify(merchantAccount, merchantDomain, orderReference string, amount float64, currency string) string {
	return g.Generate([]string{merchantAccount, merchantDomain, orderReference, FormatAmount(amount), currency})
}

// ServiceURLFields are the inbound webhook fields covered by the gateway's
// signature, in order. Every optional field keeps its slot as an empty
// string; the gateway computed its digest including those empty slots.
type ServiceURLFields struct {
	MerchantAccount   string
	OrderReference    string
	Amount            string
	Currency          string
	AuthCode          string
	CardPan           string
	TransactionStatus string
	ReasonCode        string
}

// ForServiceURL: merchantAccount;orderReference;amount;currency;authCode;
// cardPan;transactionStatus;reasonCode.
func (g *Generator) ForServiceURL(f ServiceURLFields) string {
	return g.Generate([]string{
		f.MerchantAccount,
		f.OrderReference,
		f.Amount,
		f.Currency,
		f.AuthCode,
		f.CardPan,
		f.TransactionStatus,
		f.ReasonCode,
	})
}

// VerifyServiceURL recomputes the inbound webhook digest and compares it to
// the supplied one in constant time.
func (g *Generator) VerifyServiceURL(f ServiceURLFields, signature string) bool {
	return hmac.Equal([]byte(g.ForServiceURL(f)), []byte(signature))
}

// ResponseSignature signs the webhook acknowledgement:
// orderReference;status;time.
func (g *Generator) ResponseSignature(orderReference, status string, unixTime int64) string {
	return g.Generate([]string{orderReference, status, strconv.FormatInt(unixTime, 10)})
}

// joinProducts flattens the three parallel product arrays into three fields.
func joinProducts(names []string, counts []int, prices []float64) []string {
	countStrs := make([]string, len(counts))
	for i, c := range counts {
		countStrs[i] = strconv.Itoa(c)
	}
	priceStrs := make([]string, len(prices))
	for i, p := range prices {
		priceStrs[i] = FormatAmount(p)
	}
	return []string{
		strings.Join(names, ";"),
		strings.Join(countStrs, ";"),
		strings.Join(priceStrs, ";"),
	}
}

// No helper exists for the recurring-management family on purpose: that
// endpoint authenticates with the raw merchant password and the live gateway
// does not expect a signature there.
