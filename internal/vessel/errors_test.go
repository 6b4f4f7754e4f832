package vessel

import (
	"errors"
	"strings"
	"testing"
)

func TestInitErrorUnwrap(t *testing.T) {
	err := NewInitError("navigation", ErrEmptyGroup, "no forward thrusters")

	if !errors.Is(err, ErrEmptyGroup) {
		t.Error("expected errors.Is to match ErrEmptyGroup")
	}

	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "navigation" {
		t.Errorf("expected InitError for navigation, got %v", err)
	}

	if !strings.Contains(err.Error(), "no forward thrusters") {
		t.Errorf("message lacks detail: %q", err.Error())
	}
}

func TestInitErrorWithoutDetail(t *testing.T) {
	err := NewInitError("alignment", ErrNoOrientationActuators, "")
	if got := err.Error(); got != "alignment: vessel: no orientation actuators" {
		t.Errorf("unexpected message %q", got)
	}
}
