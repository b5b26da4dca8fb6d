package notify

import (
	"context"
	"errors"
	"testing"
)

func TestMock_RecordsEvents(t *testing.T) {
	m := NewMock()
	if _, ok := m.LastSent(); ok {
		t.Fatal("LastSent on empty mock should report false")
	}
	m.Send(context.Background(), Event{Title: "a"})
	m.Send(context.Background(), Event{Title: "b"})

	if m.SentCount() != 2 {
		t.Errorf("SentCount = %d, want 2", m.SentCount())
	}
	if last, _ := m.LastSent(); last.Title != "b" {
		t.Errorf("LastSent = %q, want b", last.Title)
	}
	all := m.AllSent()
	all[0].Title = "changed"
	if m.AllSent()[0].Title != "a" {
		t.Error("AllSent should return a copy")
	}
}

func TestMock_Err(t *testing.T) {
	m := NewMock()
	m.Err = errors.New("boom")
	if err := m.Send(context.Background(), Event{}); err == nil {
		t.Fatal("expected error")
	}
	if m.SentCount() != 0 {
		t.Errorf("SentCount = %d, want 0", m.SentCount())
	}
}
