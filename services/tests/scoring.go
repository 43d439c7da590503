package tests

import (
	"strconv"
	"strings"

	"github.com/sreevasthav1710/study10/model"
)

// AnswerMap maps a question id (decimal string, matching the JSON column) to
// the chosen option letter "a".."d".
type AnswerMap map[string]string

// ValidOption reports whether opt is a recognized answer letter.
func ValidOption(opt string) bool {
	switch strings.ToLower(opt) {
	case "a", "b", "c", "d":
		return true
	}
	return false
}

// Score grades an answer map against the test's questions. A question counts
// only when the chosen option equals its correct option; unanswered questions
// count as wrong. Total is always the full question count.
func Score(questions []model.TestQuestion, answers AnswerMap) (score, total int) {
	total = len(questions)
	for _, q := range questions {
		chosen, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if !ok {
			continue
		}
		if strings.EqualFold(chosen, q.CorrectOption) {
			score++
		}
	}
	return score, total
}
