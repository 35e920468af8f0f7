package domain

// Currency is our own type for the gateway's supported currencies to avoid
// magic strings.
type Currency string

const (
	CurrencyUAH Currency = "UAH"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyPLN Currency = "PLN"
	CurrencyGBP Currency = "GBP"
)

// Valid reports whether the currency is one the gateway accepts.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUAH, CurrencyUSD, CurrencyEUR, CurrencyPLN, CurrencyGBP:
		return true
	}
	return false
}

const maxOrderReferenceLen = 64

// TransactionParams carries everything NewTransaction needs. The first four
// fields are required; the rest are optional and validated only when set.
type TransactionParams struct {
	OrderReference string
	Amount         float64
	Currency       Currency
	OrderDate      int64

	Client               *Client
	PaymentSystems       string // e.g. "card;googlePay;applePay"
	DefaultPaymentSystem string
	OrderTimeout         int
	OrderLifetime        int

	// Recurring billing schedule.
	RegularMode   string // daily, weekly, monthly, ...
	RegularOn     string
	DateNext      string // DD.MM.YYYY
	DateEnd       string
	RegularCount  int
	RegularAmount float64
}

// Transaction is the aggregate root of one payment. Required fields are
// validated up front; the product list is the only part that grows after
// construction and it is append-only. A Transaction is not safe for
// concurrent mutation; each instance belongs to the caller that built it.
type Transaction struct {
	params   TransactionParams
	products []Product
}

// NewTransaction validates the params fail-fast and returns an immutable
// transaction (modulo AddProduct).
func NewTransaction(p TransactionParams) (*Transaction, error) {
	if p.OrderReference == "" {
		return nil, newValidationError("orderReference", "order reference must not be empty")
	}
	if len(p.OrderReference) > maxOrderReferenceLen {
		return nil, newValidationError("orderReference", "order reference must not exceed 64 characters")
	}
	if p.Amount <= 0 {
		return nil, newValidationError("amount", "amount must be positive")
	}
	if !p.Currency.Valid() {
		return nil, newValidationError("currency", "currency must be one of UAH, USD, EUR, PLN, GBP")
	}
	if p.OrderDate <= 0 {
		return nil, newValidationError("orderDate", "order date must be a positive unix timestamp")
	}
	if p.OrderTimeout < 0 {
		return nil, newValidationError("orderTimeout", "order timeout must be positive")
	}
	if p.OrderLifetime < 0 {
		return nil, newValidationError("orderLifetime", "order lifetime must be positive")
	}
	if p.RegularCount < 0 {
		return nil, newValidationError("regularCount", "regular count must be at least 1")
	}
	if p.RegularAmount < 0 {
		return nil, newValidationError("regularAmount", "regular amount must be positive")
	}
	return &Transaction{params: p}, nil
}

// AddProduct appends one line item. Returns the transaction for chaining.
func (t *Transaction) AddProduct(p Product) *Transaction {
	t.products = append(t.products, p)
	return t
}

// Products returns the attached line items. A transaction with no products
// cannot be used in a request, so an empty list is an error here.
func (t *Transaction) Products() ([]Product, error) {
	if len(t.products) == 0 {
		return nil, ErrNoProducts
	}
	out := make([]Product, len(t.products))
	copy(out, t.products)
	return out, nil
}

func (t *Transaction) OrderReference() string { return t.params.OrderReference }
func (t *Transaction) Amount() float64        { return t.params.Amount }
func (t *Transaction) Currency() Currency     { return t.params.Currency }
func (t *Transaction) OrderDate() int64       { return t.params.OrderDate }
func (t *Transaction) Client() *Client        { return t.params.Client }

// OptionalFields returns the optional transaction fields that were set, under
// the gateway's key names. Absent fields are never emitted.
func (t *Transaction) OptionalFields() map[string]any {
	fields := make(map[string]any)
	p := t.params
	if p.PaymentSystems != "" {
		fields["paymentSystems"] = p.PaymentSystems
	}
	if p.DefaultPaymentSystem != "" {
		fields["defaultPaymentSystem"] = p.DefaultPaymentSystem
	}
	if p.OrderTimeout > 0 {
		fields["orderTimeout"] = p.OrderTimeout
	}
	if p.OrderLifetime > 0 {
		fields["orderLifetime"] = p.OrderLifetime
	}
	if p.RegularMode != "" {
		fields["regularMode"] = p.RegularMode
	}
	if p.RegularOn != "" {
		fields["regularOn"] = p.RegularOn
	}
	if p.DateNext != "" {
		fields["dateNext"] = p.DateNext
	}
	if p.DateEnd != "" {
		fields["dateEnd"] = p.DateEnd
	}
	if p.RegularCount > 0 {
		fields["regularCount"] = p.RegularCount
	}
	if p.RegularAmount > 0 {
		fields["regularAmount"] = p.RegularAmount
	}
	return fields
}
