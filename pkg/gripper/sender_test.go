package gripper

import (
	"errors"
	"testing"
)

func TestSender_Send(t *testing.T) {
	p := &fakePort{}
	s := NewSender(p)

	if err := s.Send(Grip); err != nil {
		t.Fatalf("Send(Grip): %v", err)
	}
	if got := p.String(); got != "T1\n" {
		t.Errorf("wrote %q, want %q", got, "T1\n")
	}
	if p.drains != 1 {
		t.Errorf("drained %d times, want 1", p.drains)
	}
}

func TestSender_SendInvalid(t *testing.T) {
	p := &fakePort{}
	s := NewSender(p)

	if err := s.Send(Action("9")); err == nil {
		t.Fatal("Send with invalid code should fail")
	}
	if p.Len() != 0 {
		t.Errorf("invalid action wrote %q", p.String())
	}
}

func TestSender_WriteError(t *testing.T) {
	p := &fakePort{writeErr: errBroken}
	s := NewSender(p)

	err := s.Send(Release)
	var commErr *CommError
	if !errors.As(err, &commErr) {
		t.Fatalf("Send error = %v, want *CommError", err)
	}
	if commErr.Action != Release {
		t.Errorf("CommError.Action = %s, want release", commErr.Action)
	}
	if !errors.Is(err, errBroken) {
		t.Errorf("CommError should wrap the write error")
	}
	if p.drains != 0 {
		t.Error("port should not be drained after a failed write")
	}
}

func TestSender_DrainError(t *testing.T) {
	p := &fakePort{drainErr: errBroken}
	s := NewSender(p)

	err := s.Send(Stop)
	var commErr *CommError
	if !errors.As(err, &commErr) {
		t.Fatalf("Send error = %v, want *CommError", err)
	}
}
