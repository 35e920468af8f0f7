package domain

import "regexp"

var (
	emailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[\d\s\-()]{6,20}$`)
	countryPattern = regexp.MustCompile(`^[A-Z]{2,3}$`)
)

const maxClientNameLen = 100

// ClientParams carries optional customer info for NewClient. Empty strings
// mean "not provided" and are neither validated nor serialized.
type ClientParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string
}

// Client is validated customer info attached to a transaction. Immutable
// after construction.
type Client struct {
	params ClientParams
}

// NewClient validates every provided field. All fields are optional.
func NewClient(p ClientParams) (*Client, error) {
	if len([]rune(p.FirstName)) > maxClientNameLen {
		return nil, newValidationError("firstName", "client first name must not exceed 100 characters")
	}
	if len([]rune(p.LastName)) > maxClientNameLen {
		return nil, newValidationError("lastName", "client last name must not exceed 100 characters")
	}
	if p.Email != "" && !emailPattern.MatchString(p.Email) {
		return nil, newValidationError("email", "client email is not a valid address")
	}
	if p.Phone != "" && !phonePattern.MatchString(p.Phone) {
		return nil, newValidationError("phone", "client phone is not a valid phone number")
	}
	if p.Country != "" && !countryPattern.MatchString(p.Country) {
		return nil, newValidationError("country", "client country must be a 2-3 letter uppercase code")
	}
	return &Client{params: p}, nil
}

// Fields returns the client under the gateway's key names, omitting every
// field that was not provided.
func (c *Client) Fields() map[string]any {
	fields := make(map[string]any)
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	put("clientFirstName", c.params.FirstName)
	put("clientLastName", c.params.LastName)
	put("clientEmail", c.params.Email)
	put("clientPhone", c.params.Phone)
	put("clientAddress", c.params.Address)
	put("clientCity", c.params.City)
	put("clientCountry", c.params.Country)
	return fields
}
