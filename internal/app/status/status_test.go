package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	for _, s := range []string{Draft, PendingReview, Approved, Active, Extended, Completed, Expired, Cancelled} {
		assert.True(t, IsValid(s), s)
	}
	assert.False(t, IsValid("Pending"))
	assert.False(t, IsValid("pending review"))
	assert.False(t, IsValid(""))
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{Draft, Approved},
		{Draft, Cancelled},
		{PendingReview, Approved},
		{PendingReview, Cancelled},
		{Approved, Active},
		{Approved, Cancelled},
		{Active, Extended},
		{Active, Completed},
		{Active, Cancelled},
		{Active, Expired},
		{Extended, Completed},
		{Extended, Cancelled},
		{Extended, Expired},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to string }{
		{PendingReview, Active},
		{PendingReview, Completed},
		{Draft, Active},
		{Approved, Completed},
		{Approved, Extended},
		{Active, Approved},
		{Active, Draft},
		{Extended, Active},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

// Из терминального статуса нельзя уйти ни в какой другой
func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminal := []string{Completed, Expired, Cancelled}
	every := []string{Draft, PendingReview, Approved, Active, Extended, Completed, Expired, Cancelled}

	for _, from := range terminal {
		assert.True(t, IsTerminal(from))
		for _, to := range every {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	for _, s := range []string{Draft, PendingReview, Approved, Active, Extended} {
		assert.False(t, IsTerminal(s))
	}
}

func TestSelfTransitionDenied(t *testing.T) {
	for _, s := range []string{Draft, PendingReview, Approved, Active, Extended} {
		assert.False(t, CanTransition(s, s), s)
	}
}

func TestIsApproval(t *testing.T) {
	assert.True(t, IsApproval(Approved))
	assert.True(t, IsApproval(Active))
	assert.False(t, IsApproval(Extended))
	assert.False(t, IsApproval(Completed))
	assert.False(t, IsApproval(PendingReview))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "Pending Review", Initial)
}
