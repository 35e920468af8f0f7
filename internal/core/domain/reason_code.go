package domain

// ReasonCode is the gateway's numeric outcome code for an API call. Payment
// codes live in the 1100s, subscription-management codes in the 4100s.
type ReasonCode int

const (
	ReasonOK                       ReasonCode = 1100
	ReasonDeclinedByIssuer         ReasonCode = 1101
	ReasonBadCVV2                  ReasonCode = 1102
	ReasonExpiredCard              ReasonCode = 1103
	ReasonInsufficientFunds        ReasonCode = 1104
	ReasonInvalidCard              ReasonCode = 1105
	ReasonExceedWithdrawalFreq     ReasonCode = 1106
	ReasonThreeDSFail              ReasonCode = 1108
	ReasonFormatError              ReasonCode = 1109
	ReasonTransactionNotAllowed    ReasonCode = 1114
	ReasonSystemError              ReasonCode = 1116
	ReasonDuplicateOrderReference  ReasonCode = 1118
	ReasonSignatureMismatch        ReasonCode = 1124
	ReasonMerchantDisabled         ReasonCode = 1125
	ReasonRegularOK                ReasonCode = 4100
	ReasonRegularNotFound          ReasonCode = 4101
	ReasonRegularAlreadyActive     ReasonCode = 4102
	ReasonRegularSuspended         ReasonCode = 4103
)

var reasonDescriptions = map[ReasonCode]string{
	ReasonOK:                      "Operation was performed without errors",
	ReasonDeclinedByIssuer:        "Refusal of the issuing Bank",
	ReasonBadCVV2:                 "Wrong CVV code",
	ReasonExpiredCard:             "The card is overdue",
	ReasonInsufficientFunds:       "Lack of assets",
	ReasonInvalidCard:             "Wrong card number or unallowable status",
	ReasonExceedWithdrawalFreq:    "Limit of operations by card exceeded",
	ReasonThreeDSFail:             "Impossible to perform 3DS transaction",
	ReasonFormatError:             "Format error",
	ReasonTransactionNotAllowed:   "Transaction not allowed",
	ReasonSystemError:             "System error",
	ReasonDuplicateOrderReference: "Duplicate order reference",
	ReasonSignatureMismatch:       "Signature mismatch",
	ReasonMerchantDisabled:        "Merchant account disabled",
	ReasonRegularOK:               "Regular operation successful",
	ReasonRegularNotFound:         "Subscription not found",
	ReasonRegularAlreadyActive:    "Subscription already active",
	ReasonRegularSuspended:        "Subscription suspended",
}

// Known reports whether the code is part of the gateway's documented set.
func (c ReasonCode) Known() bool {
	_, ok := reasonDescriptions[c]
	return ok
}

// IsSuccess is true only for the OK and regular-OK codes.
func (c ReasonCode) IsSuccess() bool {
	return c == ReasonOK || c == ReasonRegularOK
}

// Description returns the gateway's canned text for a known code and an empty
// string otherwise.
func (c ReasonCode) Description() string {
	return reasonDescriptions[c]
}
