package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Response is one graded answer as persisted. Question text and canonical
// answer are copied from the answer key at grading time.
type Response struct {
	ID              int64
	ParticipantID   int64
	ParticipantName string
	QuestionID      int
	QuestionText    string
	SubmittedAnswer string
	CanonicalAnswer string
	IsCorrect       bool
	AnsweredAt      time.Time
}

// Score is the outcome of one submission. TotalQuestions is always the size
// of the answer key, not the number of answers submitted.
type Score struct {
	CorrectAnswers int
	TotalQuestions int
	Percentage     float64
}

// GradedSubmission holds the rows to persist and the score to return.
type GradedSubmission struct {
	Responses []Response
	Score     Score
}

// NormalizeAnswer trims surrounding whitespace and upper-cases.
func NormalizeAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// AnswersMatch is an exact comparison after normalization.
func AnswersMatch(submitted, canonical string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(canonical)
}

// RoundPercent rounds to two decimals, half away from zero.
func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage returns correct/total*100 rounded to two decimals, or 0 when
// total is 0.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return RoundPercent(float64(correct) / float64(total) * 100)
}

// ParseQuestionID coerces a submitted key to a question id. Surrounding
// whitespace and a leading sign are accepted.
func ParseQuestionID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return id, true
}

// AnswerText turns a decoded JSON value into the text that gets graded and
// stored.
func AnswerText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

type submittedEntry struct {
	rawKey string
	id     int
	value  interface{}
}

// Grade scores raw answers against the key. Keys that are not integers and
// ids missing from the key are skipped. Entries are returned in ascending
// question id order. Every entry becomes a response, but a question counts
// towards CorrectAnswers at most once.
func Grade(key *AnswerKey, participantID int64, participantName string, answers map[string]interface{}) GradedSubmission {
	entries := make([]submittedEntry, 0, len(answers))
	for rawKey, value := range answers {
		id, ok := ParseQuestionID(rawKey)
		if !ok {
			continue
		}
		entries = append(entries, submittedEntry{rawKey: rawKey, id: id, value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].id != entries[j].id {
			return entries[i].id < entries[j].id
		}
		return entries[i].rawKey < entries[j].rawKey
	})

	graded := GradedSubmission{
		Responses: make([]Response, 0, len(entries)),
		Score:     Score{TotalQuestions: key.Len()},
	}
	credited := make(map[int]bool, len(entries))
	for _, e := range entries {
		q, ok := key.Lookup(e.id)
		if !ok {
			continue
		}
		submitted := AnswerText(e.value)
		correct := AnswersMatch(submitted, q.Answer)
		// Keys like "1" and "01" name the same question; it scores once.
		if correct && !credited[q.ID] {
			credited[q.ID] = true
			graded.Score.CorrectAnswers++
		}
		graded.Responses = append(graded.Responses, Response{
			ParticipantID:   participantID,
			ParticipantName: participantName,
			QuestionID:      q.ID,
			QuestionText:    q.Text,
			SubmittedAnswer: submitted,
			CanonicalAnswer: q.Answer,
			IsCorrect:       correct,
		})
	}
	graded.Score.Percentage = Percentage(graded.Score.CorrectAnswers, graded.Score.TotalQuestions)
	return graded
}
