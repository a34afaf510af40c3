package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"study-notes/models"
)

// ParseQuiz decodes model output into a quiz. The text may be a single
// question object or an object with a "questions" array, optionally inside
// a markdown code fence. Every question must be complete and name one of
// the four options as its answer.
func ParseQuiz(text string) (*models.Quiz, error) {
	text = stripFence(text)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
	}

	var quiz models.Quiz
	if list, ok := raw["questions"]; ok {
		if err := json.Unmarshal(list, &quiz.Questions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
	} else {
		var q models.Question
		if err := json.Unmarshal([]byte(text), &q); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
		quiz.Questions = []models.Question{q}
	}

	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformedQuiz)
	}
	for i := range quiz.Questions {
		if err := checkQuestion(&quiz.Questions[i]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrMalformedQuiz, i+1, err)
		}
	}
	return &quiz, nil
}

func checkQuestion(q *models.Question) error {
	q.CorrectAnswer = strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	switch {
	case strings.TrimSpace(q.Question) == "":
		return fmt.Errorf("missing question")
	case q.Options.A == "" || q.Options.B == "" || q.Options.C == "" || q.Options.D == "":
		return fmt.Errorf("missing option")
	case strings.TrimSpace(q.Explanation) == "":
		return fmt.Errorf("missing explanation")
	}
	switch q.CorrectAnswer {
	case "a", "b", "c", "d":
		return nil
	default:
		return fmt.Errorf("correct_answer %q is not one of a, b, c, d", q.CorrectAnswer)
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
