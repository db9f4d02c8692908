package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusShipped, false},
		{StatusProcessing, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{Status("lost"), StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusTerminalAndLabel(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, Status("lost").Terminal())

	assert.Equal(t, "Processing", StatusProcessing.Label())
	assert.Equal(t, "on-hold", Status("on-hold").Label())
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, CanTransitionPayment(PaymentPending, PaymentCompleted))
	assert.True(t, CanTransitionPayment(PaymentFailed, PaymentPending))
	assert.True(t, CanTransitionPayment(PaymentCompleted, PaymentRefunded))
	assert.False(t, CanTransitionPayment(PaymentRefunded, PaymentCompleted))
	assert.False(t, CanTransitionPayment(PaymentPending, PaymentRefunded))
	assert.False(t, PaymentStatus("chargeback").Valid())
}
