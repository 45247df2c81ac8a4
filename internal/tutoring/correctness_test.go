package tutoring

import "testing"

func TestMarkerClassifier(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Correctness
	}{
		{"plain correct", "Correct! 3/4 is larger.", CorrectnessTrue},
		{"plain incorrect", "Not quite. Remember to find a common denominator.", CorrectnessFalse},
		{"praise variant", "That's right, well done!", CorrectnessTrue},
		{"wrong variant", "Unfortunately that's wrong.", CorrectnessFalse},
		{"reveals answer", "The correct answer is 12.", CorrectnessFalse},
		{"case insensitive", "CORRECT! Keep it up.", CorrectnessTrue},
		{"german correct", "Genau! Das stimmt.", CorrectnessTrue},
		{"german incorrect", "Leider falsch, versuch es noch einmal.", CorrectnessFalse},
		{"neutral chat", "Fractions represent parts of a whole.", CorrectnessUnknown},
		{"question back", "Can you explain your reasoning?", CorrectnessUnknown},
		{"empty", "", CorrectnessUnknown},
	}

	m := NewMarkerClassifier()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Classify(tc.text); got != tc.want {
				t.Fatalf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

// Praise alongside a correction must still read as incorrect, so the
// incorrect markers win regardless of where they appear in the text.
func TestMarkerClassifier_IncorrectWinsOverPraise(t *testing.T) {
	m := NewMarkerClassifier()

	texts := []string{
		"Great job on the setup, but not quite the right result.",
		"Well done trying! Unfortunately the sign is flipped.",
		"Sehr gut gedacht, aber nicht richtig.",
	}
	for _, text := range texts {
		if got := m.Classify(text); got != CorrectnessFalse {
			t.Fatalf("Classify(%q) = %v, want incorrect", text, got)
		}
	}
}

func TestCorrectnessString(t *testing.T) {
	if CorrectnessTrue.String() != "correct" ||
		CorrectnessFalse.String() != "incorrect" ||
		CorrectnessUnknown.String() != "unknown" {
		t.Fatalf("unexpected String() values: %s %s %s",
			CorrectnessTrue, CorrectnessFalse, CorrectnessUnknown)
	}
}
