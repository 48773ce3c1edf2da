package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Questions   datatypes.JSON `json:"questions" gorm:"not null"`
	CreatedBy   uint           `json:"createdBy" gorm:"index"`

	Responses []QuizResponse `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"` // index into Options
}

type QuizResponse struct {
	gorm.Model
	QuizID      uint           `json:"quizID" gorm:"uniqueIndex:idx_quiz_student;not null"`
	StudentName string         `json:"studentName" gorm:"uniqueIndex:idx_quiz_student;size:120;not null"`
	Answers     datatypes.JSON `json:"answers"`
	Score       int            `json:"score" gorm:"not null;index"`
}

// ValidateQuizQuestions parses the raw questions payload into its typed shape,
// rejecting malformed entries before they are persisted.
func ValidateQuizQuestions(raw json.RawMessage) ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, errors.New("questions must be an array of question objects")
	}
	if len(questions) == 0 {
		return nil, errors.New("a quiz needs at least one question")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("question %d: prompt is required", i+1)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: at least two options are required", i+1)
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, fmt.Errorf("question %d: answer index out of range", i+1)
		}
	}
	return questions, nil
}

// ParseQuestions returns the quiz's stored question set in its typed shape.
func (q *Quiz) ParseQuestions() ([]QuizQuestion, error) {
	return ValidateQuizQuestions(json.RawMessage(q.Questions))
}

// ScoreAnswers awards one point per exact match. The answers slice must have
// one entry per question.
func ScoreAnswers(questions []QuizQuestion, answers []int) (int, error) {
	if len(answers) != len(questions) {
		return 0, fmt.Errorf("expected %d answers, got %d", len(questions), len(answers))
	}
	score := 0
	for i, q := range questions {
		if answers[i] == q.Answer {
			score++
		}
	}
	return score, nil
}
