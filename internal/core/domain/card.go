package domain

import (
	"regexp"
	"strings"
)

var (
	expMonthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	expYearPattern  = regexp.MustCompile(`^\d{2}$`)
	cvvPattern      = regexp.MustCompile(`^\d{3,4}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// Card is a validated payment card. The number is stored digits-only; raw
// separators (spaces, dashes) are accepted on input but never transmitted.
type Card struct {
	number   string
	expMonth string
	expYear  string
	cvv      string
	holder   string
}

// NewCard cleans and validates card data. The number must be 13-19 digits and
// pass the Luhn checksum, the expiry month is 01-12, the year two digits, the
// cvv 3 or 4 digits. The holder name is optional.
func NewCard(number, expMonth, expYear, cvv, holder string) (*Card, error) {
	cleaned := nonDigits.ReplaceAllString(number, "")
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return nil, newValidationError("cardNumber", "card number must be 13 to 19 digits")
	}
	if !luhnValid(cleaned) {
		return nil, newValidationError("cardNumber", "card number failed checksum validation")
	}
	if !expMonthPattern.MatchString(expMonth) {
		return nil, newValidationError("expMonth", "expiry month must be between 01 and 12")
	}
	if !expYearPattern.MatchString(expYear) {
		return nil, newValidationError("expYear", "expiry year must be exactly two digits")
	}
	if !cvvPattern.MatchString(cvv) {
		return nil, newValidationError("cvv", "cvv must be 3 or 4 digits")
	}
	if len([]rune(holder)) > maxClientNameLen {
		return nil, newValidationError("holderName", "card holder name must not exceed 100 characters")
	}
	return &Card{
		number:   cleaned,
		expMonth: expMonth,
		expYear:  expYear,
		cvv:      cvv,
		holder:   strings.TrimSpace(holder),
	}, nil
}

// luhnValid runs the Luhn checksum: right to left, double every second digit,
// subtract 9 when doubling exceeds 9, the total must divide by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Number returns the cleaned, digits-only card number.
func (c *Card) Number() string { return c.number }

func (c *Card) ExpMonth() string { return c.expMonth }
func (c *Card) ExpYear() string  { return c.expYear }
func (c *Card) CVV() string      { return c.cvv }
func (c *Card) Holder() string   { return c.holder }

// Fields returns the card under the gateway's key names. cardHolder is
// omitted when absent.
func (c *Card) Fields() map[string]any {
	fields := map[string]any{
		"card":     c.number,
		"expMonth": c.expMonth,
		"expYear":  c.expYear,
		"cardCvv":  c.cvv,
	}
	if c.holder != "" {
		fields["cardHolder"] = c.holder
	}
	return fields
}
