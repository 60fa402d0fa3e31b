package monitor

import "testing"

func TestNormalizeRoll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"a1b2", "A1B2"},
		{"  a1b2  ", "A1B2"},
		{"A1B2", "A1B2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRoll(tt.in); got != tt.want {
			t.Errorf("NormalizeRoll(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubscriberKey(t *testing.T) {
	t.Parallel()

	a := Subscriber{Roll: "A1", DOB: "x", ChatID: 100}
	b := Subscriber{Roll: "A1", DOB: "y", ChatID: 100}
	if a.Key() != b.Key() {
		t.Fatal("key must ignore date of birth")
	}
	c := Subscriber{Roll: "A1", DOB: "x", ChatID: 200}
	if a.Key() == c.Key() {
		t.Fatal("key must distinguish chats")
	}
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	if o := TextOutcome("Math: 90"); o.Kind != OutcomeText || o.Text != "Math: 90" {
		t.Fatalf("unexpected text outcome: %+v", o)
	}
	if o := NoResult(); o.Kind != OutcomeNoResult || o.Text != "" {
		t.Fatalf("unexpected no-result outcome: %+v", o)
	}
	if o := PortalError(); o.Kind != OutcomePortalError {
		t.Fatalf("unexpected portal-error outcome: %+v", o)
	}
}
