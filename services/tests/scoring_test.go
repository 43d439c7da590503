package tests

import (
	"testing"

	"github.com/sreevasthav1710/study10/model"
)

func sampleQuestions() []model.TestQuestion {
	return []model.TestQuestion{
		{ID: 10, CorrectOption: "a"},
		{ID: 11, CorrectOption: "c"},
		{ID: 12, CorrectOption: "b"},
		{ID: 13, CorrectOption: "d"},
	}
}

func TestScoreExactMatches(t *testing.T) {
	answers := AnswerMap{
		"10": "a", // correct
		"11": "b", // wrong
		"12": "b", // correct
		"13": "a", // wrong
	}
	score, total := Score(sampleQuestions(), answers)
	if score != 2 || total != 4 {
		t.Fatalf("got score=%d total=%d, want 2/4", score, total)
	}
}

func TestScoreUnansweredCountsWrong(t *testing.T) {
	answers := AnswerMap{"10": "a"}
	score, total := Score(sampleQuestions(), answers)
	if score != 1 || total != 4 {
		t.Fatalf("got score=%d total=%d, want 1/4", score, total)
	}
}

func TestScoreOrderInsensitive(t *testing.T) {
	answers := AnswerMap{"13": "d", "10": "a", "12": "b", "11": "c"}

	score1, _ := Score(sampleQuestions(), answers)

	reversed := sampleQuestions()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	score2, _ := Score(reversed, answers)

	if score1 != 4 || score2 != 4 {
		t.Fatalf("scoring depends on question order: %d vs %d", score1, score2)
	}
}

func TestScoreIgnoresStrayAnswers(t *testing.T) {
	// Answers for questions not in the test never add to the score.
	answers := AnswerMap{"10": "a", "999": "a"}
	score, total := Score(sampleQuestions(), answers)
	if score != 1 || total != 4 {
		t.Fatalf("got score=%d total=%d, want 1/4", score, total)
	}
}

func TestScoreCaseInsensitiveOptions(t *testing.T) {
	answers := AnswerMap{"10": "A", "11": "C"}
	score, _ := Score(sampleQuestions(), answers)
	if score != 2 {
		t.Fatalf("got score=%d, want 2 with uppercase letters", score)
	}
}

func TestScoreEmptyTest(t *testing.T) {
	score, total := Score(nil, AnswerMap{"1": "a"})
	if score != 0 || total != 0 {
		t.Fatalf("got score=%d total=%d, want 0/0", score, total)
	}
}

func TestValidOption(t *testing.T) {
	for _, opt := range []string{"a", "b", "c", "d", "A", "D"} {
		if !ValidOption(opt) {
			t.Fatalf("expected %q to be valid", opt)
		}
	}
	for _, opt := range []string{"", "e", "ab", "1"} {
		if ValidOption(opt) {
			t.Fatalf("expected %q to be invalid", opt)
		}
	}
}
