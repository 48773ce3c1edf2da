package models

import (
	"encoding/json"
	"testing"
)

func TestValidateQuizQuestions(t *testing.T) {
	valid := json.RawMessage(`[
		{"prompt": "2+2?", "options": ["3", "4"], "answer": 1},
		{"prompt": "Capital of France?", "options": ["Paris", "Lyon", "Nice"], "answer": 0}
	]`)
	questions, err := ValidateQuizQuestions(valid)
	if err != nil {
		t.Fatalf("valid questions rejected: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	malformed := []struct {
		name string
		raw  string
	}{
		{"not an array", `{"prompt": "x"}`},
		{"empty array", `[]`},
		{"missing prompt", `[{"prompt": "  ", "options": ["a", "b"], "answer": 0}]`},
		{"one option", `[{"prompt": "x", "options": ["a"], "answer": 0}]`},
		{"answer out of range", `[{"prompt": "x", "options": ["a", "b"], "answer": 2}]`},
		{"negative answer", `[{"prompt": "x", "options": ["a", "b"], "answer": -1}]`},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ValidateQuizQuestions(json.RawMessage(tc.raw)); err == nil {
				t.Errorf("expected rejection for %s", tc.name)
			}
		})
	}
}

func TestScoreAnswers(t *testing.T) {
	questions := []QuizQuestion{
		{Prompt: "a", Options: []string{"x", "y"}, Answer: 0},
		{Prompt: "b", Options: []string{"x", "y"}, Answer: 1},
		{Prompt: "c", Options: []string{"x", "y", "z"}, Answer: 2},
	}

	score, err := ScoreAnswers(questions, []int{0, 1, 2})
	if err != nil || score != 3 {
		t.Fatalf("perfect answers: got score=%d err=%v", score, err)
	}

	score, err = ScoreAnswers(questions, []int{1, 1, 0})
	if err != nil || score != 1 {
		t.Fatalf("one correct answer: got score=%d err=%v", score, err)
	}

	if _, err := ScoreAnswers(questions, []int{0, 1}); err == nil {
		t.Error("expected error for answer count mismatch")
	}
}
