package music

import (
	"testing"
	"time"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	h := newHarness()

	a := h.manager.GetOrCreate("g1")
	b := h.manager.GetOrCreate("g1")
	if a != b {
		t.Error("second GetOrCreate returned a different session")
	}
	if !h.manager.Has("g1") {
		t.Error("Has = false for a live session")
	}
	if h.manager.Has("g2") {
		t.Error("Has = true for an unknown guild")
	}
}

func TestRemoveIgnoresReplacedSession(t *testing.T) {
	h := newHarness()

	old := h.manager.GetOrCreate("g1")
	old.ShutdownNow(false)

	// A new session for the same guild must survive the old one's
	// lingering teardown.
	replacement := h.manager.GetOrCreate("g1")
	h.manager.Remove(old)

	got, ok := h.manager.Get("g1")
	if !ok || got != replacement {
		t.Error("Remove of a stale session evicted its replacement")
	}
}

func TestListSnapshots(t *testing.T) {
	h := newHarness()
	h.manager.GetOrCreate("g1")
	h.manager.GetOrCreate("g2")

	if got := len(h.manager.List()); got != 2 {
		t.Errorf("List len = %d, want 2", got)
	}
}

func TestStopAll(t *testing.T) {
	h := newHarness()
	a := h.manager.GetOrCreate("g1")
	b := h.manager.GetOrCreate("g2")

	h.manager.StopAll()

	if !a.Stopping() || !b.Stopping() {
		t.Error("StopAll left a session running")
	}
	if len(h.manager.List()) != 0 {
		t.Error("StopAll left sessions registered")
	}
}

func TestCreateClearsRecentMark(t *testing.T) {
	h := newHarness()
	h.manager.MarkRecent("g1")

	h.manager.GetOrCreate("g1")

	h.manager.mu.Lock()
	_, kept := h.manager.recent["g1"]
	h.manager.mu.Unlock()
	if kept {
		t.Error("creating a session kept the guild's stopped-recently record")
	}
}

func TestRecentlyStoppedWindow(t *testing.T) {
	h := newHarness()

	if h.manager.RecentlyStopped("g1") {
		t.Error("unknown guild reported recently stopped")
	}

	h.manager.MarkRecent("g1")
	if !h.manager.RecentlyStopped("g1") {
		t.Error("freshly stopped guild not within grace")
	}

	// Age the record past the grace window but inside the keep window.
	h.manager.mu.Lock()
	h.manager.recent["g1"] = time.Now().Add(-2 * time.Minute)
	h.manager.mu.Unlock()
	if h.manager.RecentlyStopped("g1") {
		t.Error("aged record still within grace")
	}

	h.manager.purgeRecent()
	h.manager.mu.Lock()
	_, kept := h.manager.recent["g1"]
	h.manager.mu.Unlock()
	if !kept {
		t.Error("purge dropped a record inside the keep window")
	}

	h.manager.mu.Lock()
	h.manager.recent["g1"] = time.Now().Add(-11 * time.Minute)
	h.manager.mu.Unlock()
	h.manager.purgeRecent()
	h.manager.mu.Lock()
	_, kept = h.manager.recent["g1"]
	h.manager.mu.Unlock()
	if kept {
		t.Error("purge kept an expired record")
	}
}
