package tutoring

import (
	"fmt"
	"strings"
)

// Generation prompts instruct the model to answer with a bare JSON array.
// The extractor still has to tolerate non-compliance; these prompts just
// raise the odds of getting clean output.

func buildProblemsPrompt(topic, difficulty string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d practice problems about %q at %q difficulty.\n\n", count, topic, difficulty)
	b.WriteString("Respond with ONLY a JSON array, no prose before or after it.\n")
	b.WriteString("Each element must have this shape:\n")
	b.WriteString(`[{"problem": "the problem statement", "solution": "the worked solution"}]` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Problems must be self-contained and solvable from the statement alone.\n")
	b.WriteString("- Solutions must show the reasoning, not just the final answer.\n")
	fmt.Fprintf(&b, "- Keep every problem at %q difficulty for a learner studying %q.\n", difficulty, topic)

	return b.String()
}

func buildQuizPrompt(topic string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d multiple-choice quiz questions about %q.\n\n", count, topic)
	b.WriteString("Respond with ONLY a JSON array, no prose before or after it.\n")
	b.WriteString("Each element must have this shape:\n")
	b.WriteString(`[{"question": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "correctAnswer": "A", "explanation": "..."}]` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Exactly 4 options per question, exactly one of them correct.\n")
	b.WriteString("- correctAnswer is the letter of the correct option.\n")
	b.WriteString("- Distractors should reflect common mistakes, not random values.\n")
	b.WriteString("- The explanation should say why the correct option is right.\n")

	return b.String()
}

func buildEvaluationPrompt(question, userAnswer string) string {
	var b strings.Builder

	b.WriteString("Evaluate the student's answer to this question.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Student's answer: %s\n\n", userAnswer)
	b.WriteString("Start your reply by stating clearly whether the answer is correct ")
	b.WriteString(`(for example "Correct!" or "Not quite"), then explain why in a way `)
	b.WriteString("that helps the student understand.")

	return b.String()
}
