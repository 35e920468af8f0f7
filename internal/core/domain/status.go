package domain

// TransactionStatus is the gateway's string lifecycle state for a payment.
type TransactionStatus string

const (
	StatusApproved       TransactionStatus = "Approved"
	StatusDeclined       TransactionStatus = "Declined"
	StatusInProcessing   TransactionStatus = "InProcessing"
	StatusExpired        TransactionStatus = "Expired"
	StatusPending        TransactionStatus = "Pending"
	StatusRefunded       TransactionStatus = "Refunded"
	StatusVoided         TransactionStatus = "Voided"
	StatusWaitingConfirm TransactionStatus = "WaitingAmountConfirm"

	// StatusAccept is webhook-specific: the value echoed back in the
	// acknowledgement.
	StatusAccept TransactionStatus = "accept"
)

// Known reports whether the status is part of the gateway's documented set.
func (s TransactionStatus) Known() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusInProcessing, StatusExpired,
		StatusPending, StatusRefunded, StatusVoided, StatusWaitingConfirm,
		StatusAccept:
		return true
	}
	return false
}

// IsFinal reports whether no further state change is expected.
func (s TransactionStatus) IsFinal() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusExpired, StatusRefunded, StatusVoided:
		return true
	}
	return false
}

// IsSuccess reports whether the status represents a successful outcome.
func (s TransactionStatus) IsSuccess() bool {
	return s == StatusApproved || s == StatusRefunded || s == StatusAccept
}
