package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonCode_IsSuccess(t *testing.T) {
	assert.True(t, ReasonOK.IsSuccess())
	assert.True(t, ReasonRegularOK.IsSuccess())

	for _, code := range []ReasonCode{
		ReasonDeclinedByIssuer, ReasonBadCVV2, ReasonExpiredCard,
		ReasonInsufficientFunds, ReasonInvalidCard, ReasonSignatureMismatch,
		ReasonRegularNotFound, ReasonRegularSuspended,
	} {
		assert.False(t, code.IsSuccess(), "code %d", int(code))
	}
}

func TestReasonCode_Known(t *testing.T) {
	assert.True(t, ReasonOK.Known())
	assert.True(t, ReasonRegularAlreadyActive.Known())
	assert.False(t, ReasonCode(9999).Known())
}

func TestReasonCode_Description(t *testing.T) {
	assert.Equal(t, "Operation was performed without errors", ReasonOK.Description())
	assert.Equal(t, "Wrong CVV code", ReasonBadCVV2.Description())
	assert.Equal(t, "Subscription not found", ReasonRegularNotFound.Description())
	assert.Empty(t, ReasonCode(9999).Description())
}

func TestTransactionStatus_IsFinal(t *testing.T) {
	final := []TransactionStatus{StatusApproved, StatusDeclined, StatusExpired, StatusRefunded, StatusVoided}
	for _, s := range final {
		assert.True(t, s.IsFinal(), "status %s", s)
	}

	nonFinal := []TransactionStatus{StatusInProcessing, StatusPending, StatusWaitingConfirm, StatusAccept}
	for _, s := range nonFinal {
		assert.False(t, s.IsFinal(), "status %s", s)
	}
}

func TestTransactionStatus_IsSuccess(t *testing.T) {
	assert.True(t, StatusApproved.IsSuccess())
	assert.True(t, StatusRefunded.IsSuccess())
	assert.True(t, StatusAccept.IsSuccess())
	assert.False(t, StatusDeclined.IsSuccess())
	assert.False(t, StatusPending.IsSuccess())
}

func TestTransactionStatus_Known(t *testing.T) {
	assert.True(t, StatusWaitingConfirm.Known())
	assert.False(t, TransactionStatus("Unknown").Known())
}
