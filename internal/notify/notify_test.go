package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEventWriterCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w := NewEventWriter(dir)

	if err := w.Notify(EventPut, "alice", "mem-abc123"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "events"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 event file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".event" {
		t.Errorf("expected .event extension, got %s", entries[0].Name())
	}
}

func TestEventWatcherReceivesEvent(t *testing.T) {
	dir := t.TempDir()

	type eventMsg struct {
		eventType string
		userID    string
		memoryID  string
	}
	received := make(chan eventMsg, 1)

	watcher := NewEventWatcher(dir, func(eventType, userID, memoryID string) {
		received <- eventMsg{eventType, userID, memoryID}
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	// Give fsnotify a moment to register
	time.Sleep(50 * time.Millisecond)

	writer := NewEventWriter(dir)
	if err := writer.Notify(EventDelete, "alice", "mem-test123"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.eventType != EventDelete {
			t.Errorf("expected event type %s, got %s", EventDelete, msg.eventType)
		}
		if msg.userID != "alice" {
			t.Errorf("expected user alice, got %s", msg.userID)
		}
		if msg.memoryID != "mem-test123" {
			t.Errorf("expected mem-test123, got %s", msg.memoryID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventWatcherDrainsExisting(t *testing.T) {
	dir := t.TempDir()

	// Write events BEFORE starting watcher
	writer := NewEventWriter(dir)
	_ = writer.Notify(EventPut, "alice", "mem-drain1")
	_ = writer.Notify(EventPin, "alice", "mem-drain2")

	received := make(chan string, 10)
	watcher := NewEventWatcher(dir, func(eventType, userID, memoryID string) {
		received <- memoryID
	})
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	// Drain should have processed both files synchronously during Start
	time.Sleep(100 * time.Millisecond)

	if len(received) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(received))
	}
}

func TestSanitizeID(t *testing.T) {
	got := sanitizeID("mem:abc/def")
	if got != "mem_abc_def" {
		t.Errorf("expected mem_abc_def, got %s", got)
	}
}
