package types

import "testing"

func TestItemIDDeterministic(t *testing.T) {
	a := ItemID(1, "https://example.com/post")
	b := ItemID(1, "https://example.com/post")
	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("id length = %d, want 16", len(a))
	}
}

func TestItemIDVariesByInput(t *testing.T) {
	base := ItemID(1, "https://example.com/post")
	if ItemID(2, "https://example.com/post") == base {
		t.Error("different sources produced the same id")
	}
	if ItemID(1, "https://example.com/other") == base {
		t.Error("different urls produced the same id")
	}
}
