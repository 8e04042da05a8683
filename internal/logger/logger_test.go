package logger

import (
	"testing"
)

func TestBufferLogger_CapturesMessages(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	if len(l.Messages) != 4 {
		t.Fatalf("captured %d messages, want 4", len(l.Messages))
	}

	if l.Messages[0].Level != "debug" || l.Messages[0].Message != "debug 1" {
		t.Errorf("first message = %+v", l.Messages[0])
	}
}

func TestBufferLogger_HasLevel(t *testing.T) {
	l := NewBufferLogger()
	l.Warn("something")

	if !l.HasLevel("warn") {
		t.Error("HasLevel(warn) = false, want true")
	}
	if l.HasLevel("error") {
		t.Error("HasLevel(error) = true, want false")
	}
}

func TestBufferLogger_Clear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("one")
	l.Clear()

	if len(l.Messages) != 0 {
		t.Errorf("after Clear, %d messages remain", len(l.Messages))
	}
}

func TestNoop_DiscardsEverything(t *testing.T) {
	// Must not panic or write anywhere.
	l := Noop()
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestDefault_NotNil(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
}
