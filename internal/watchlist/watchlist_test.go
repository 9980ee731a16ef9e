package watchlist

import (
	"reflect"
	"testing"
)

func TestAddRemove(t *testing.T) {
	w := New([]string{"AAPL", "TSLA"})

	if !w.Add("nvda") {
		t.Error("Add(nvda) = false, want true")
	}
	if w.Add("NVDA") {
		t.Error("duplicate Add must return false")
	}
	if w.Add("  ") {
		t.Error("blank Add must return false")
	}

	want := []string{"AAPL", "TSLA", "NVDA"}
	if got := w.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if !w.Remove("tsla") {
		t.Error("Remove(tsla) = false, want true")
	}
	if w.Remove("TSLA") {
		t.Error("removing an absent ticker must return false")
	}
	want = []string{"AAPL", "NVDA"}
	if got := w.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() after remove = %v, want %v", got, want)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	w := New([]string{"AAPL", "TSLA"})

	snap := w.Snapshot()
	w.Add("NVDA")
	w.Remove("AAPL")

	if !reflect.DeepEqual(snap, []string{"AAPL", "TSLA"}) {
		t.Errorf("snapshot mutated by later writes: %v", snap)
	}
}

func TestContains(t *testing.T) {
	w := New([]string{"SPY"})
	if !w.Contains("spy") {
		t.Error("Contains must be case insensitive")
	}
	if w.Contains("QQQ") {
		t.Error("Contains(QQQ) = true, want false")
	}
}
