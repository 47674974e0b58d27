package entity

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalPair(t *testing.T) {
	x := uuid.New()
	y := uuid.New()

	a1, b1 := CanonicalPair(x, y)
	a2, b2 := CanonicalPair(y, x)

	if a1 != a2 || b1 != b2 {
		t.Errorf("CanonicalPair is order-dependent: (%s,%s) vs (%s,%s)", a1, b1, a2, b2)
	}
	if a1 == b1 {
		t.Error("distinct inputs collapsed to the same id")
	}
	// The pair must contain exactly the inputs.
	if !(a1 == x && b1 == y) && !(a1 == y && b1 == x) {
		t.Error("canonical pair lost an input id")
	}
}

func TestCanonicalPairSame(t *testing.T) {
	x := uuid.New()
	a, b := CanonicalPair(x, x)
	if a != x || b != x {
		t.Error("identical inputs should pass through")
	}
}

func TestOtherParticipant(t *testing.T) {
	x := uuid.New()
	y := uuid.New()
	a, b := CanonicalPair(x, y)

	c := Conversation{ParticipantA: a, ParticipantB: b}

	if got := c.OtherParticipant(x); got != y {
		t.Errorf("OtherParticipant(%s) = %s, want %s", x, got, y)
	}
	if got := c.OtherParticipant(y); got != x {
		t.Errorf("OtherParticipant(%s) = %s, want %s", y, got, x)
	}
}
