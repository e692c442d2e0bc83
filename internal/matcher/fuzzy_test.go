package matcher

import "testing"

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INV-001", "inv 001"},
		{"  Hello,  World!  ", "hello world"},
		{"abc123", "abc123"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := preprocess(tt.in); got != tt.want {
			t.Errorf("preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScoreAcceptsVariants(t *testing.T) {
	m := NewMatcher()

	// Case and punctuation variants must clear the cutoff.
	accepted := [][2]string{
		{"INV001", "inv-001"},
		{"INV001", "INV001"},
		{"ACME Corp", "acme corp."},
		{"Beta Alpha", "Alpha Beta"}, // token order
	}
	for _, pair := range accepted {
		if score := m.Score(pair[0], pair[1]); score < DefaultScoreCutoff {
			t.Errorf("Score(%q, %q) = %.1f, want >= %.1f", pair[0], pair[1], score, DefaultScoreCutoff)
		}
	}

	// Unrelated keys must not.
	rejected := [][2]string{
		{"INV001", "XYZ999"},
		{"ACME Corp", "Globex LLC"},
	}
	for _, pair := range rejected {
		if score := m.Score(pair[0], pair[1]); score >= DefaultScoreCutoff {
			t.Errorf("Score(%q, %q) = %.1f, want < %.1f", pair[0], pair[1], score, DefaultScoreCutoff)
		}
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	m := NewMatcher()
	if score := m.Score("", "anything"); score != 0 {
		t.Errorf("empty input scored %.1f, want 0", score)
	}
	if score := m.Score("!!!", "anything"); score != 0 {
		t.Errorf("punctuation-only input scored %.1f, want 0", score)
	}
}

func TestBestMatch(t *testing.T) {
	m := NewMatcher()
	candidates := []string{"inv-001", "inv-002", "XYZ999"}

	match, score, ok := m.BestMatch("INV001", candidates)
	if !ok {
		t.Fatal("expected a match for INV001")
	}
	if match != "inv-001" {
		t.Errorf("BestMatch = %q (%.1f), want inv-001", match, score)
	}

	if _, _, ok := m.BestMatch("completely different", candidates); ok {
		t.Error("expected no match for unrelated value")
	}
}

func TestBuildKeyMap(t *testing.T) {
	m := NewMatcher()
	baseValues := []string{"INV001", "INV002", "NOPE-ZZZ"}
	refValues := []string{"inv-001", "inv-002"}

	keyMap := m.BuildKeyMap(baseValues, refValues)

	if got := keyMap["INV001"]; got != "inv-001" {
		t.Errorf("keyMap[INV001] = %q, want inv-001", got)
	}
	if got := keyMap["INV002"]; got != "inv-002" {
		t.Errorf("keyMap[INV002] = %q, want inv-002", got)
	}
	// Unmatched values map to the sentinel, never to a real key.
	if got := keyMap["NOPE-ZZZ"]; got != NoMatchSentinel {
		t.Errorf("keyMap[NOPE-ZZZ] = %q, want %q", got, NoMatchSentinel)
	}
}
