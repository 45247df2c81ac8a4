package tutoring

import "strings"

// Correctness is the tri-state outcome of classifying a tutor reply.
type Correctness int

const (
	CorrectnessUnknown Correctness = iota
	CorrectnessTrue
	CorrectnessFalse
)

func (c Correctness) String() string {
	switch c {
	case CorrectnessTrue:
		return "correct"
	case CorrectnessFalse:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Classifier turns free-form tutor feedback into a correctness signal.
// Deliberately an interface: the marker heuristic below is fragile across
// phrasing and languages, and a model-based classifier should be able to
// replace it without touching the tracker or the generator.
type Classifier interface {
	Classify(text string) Correctness
}

// MarkerClassifier scans ordered marker lists. The incorrect list is tested
// first: tutoring feedback often praises effort while correcting the answer
// ("Not quite, but great effort!"), and that must classify as incorrect.
// With no marker hit the result is Unknown rather than a guess.
type MarkerClassifier struct {
	incorrect []string
	correct   []string
}

// NewMarkerClassifier returns the default English + German marker sets.
func NewMarkerClassifier() *MarkerClassifier {
	return &MarkerClassifier{
		incorrect: []string{
			"not quite",
			"not correct",
			"incorrect",
			"unfortunately",
			"that's wrong",
			"that is wrong",
			"not right",
			"try again",
			"the correct answer is",
			"nicht ganz",
			"nicht richtig",
			"nicht korrekt",
			"leider",
			"falsch",
			"versuch es noch einmal",
			"die richtige antwort ist",
		},
		correct: []string{
			"correct",
			"that's right",
			"that is right",
			"exactly right",
			"well done",
			"spot on",
			"great job",
			"richtig",
			"korrekt",
			"genau",
			"gut gemacht",
			"sehr gut",
		},
	}
}

// Classify is pure and I/O-free. Matching is case-insensitive substring
// containment; list order is the tie-break.
func (m *MarkerClassifier) Classify(text string) Correctness {
	lowered := strings.ToLower(text)

	for _, marker := range m.incorrect {
		if strings.Contains(lowered, marker) {
			return CorrectnessFalse
		}
	}
	for _, marker := range m.correct {
		if strings.Contains(lowered, marker) {
			return CorrectnessTrue
		}
	}
	return CorrectnessUnknown
}
