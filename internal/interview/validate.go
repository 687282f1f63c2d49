package interview

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLen   = 2
	maxNameLen   = 20
	maxAnswerLen = 4000
	minSpamRun   = 4
)

// ValidationError rejects a candidate input. The candidate is asked again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validateName(text string) (string, error) {
	name := strings.TrimSpace(text)
	switch n := utf8.RuneCountInString(name); {
	case n < minNameLen:
		return "", &ValidationError{Field: "name", Reason: "Please provide a valid first name (at least 2 characters)."}
	case n > maxNameLen:
		return "", &ValidationError{Field: "name", Reason: "Please provide just your first name (not a long message)."}
	case strings.ContainsAny(name, ".\n"):
		return "", &ValidationError{Field: "name", Reason: "Please provide just your first name (not a sentence or paragraph)."}
	}
	return name, nil
}

func validateAnswer(text string) (string, error) {
	answer := strings.TrimSpace(text)
	switch {
	case answer == "":
		return "", &ValidationError{Field: "answer", Reason: "Please reply with a text answer to the question."}
	case utf8.RuneCountInString(answer) > maxAnswerLen:
		return "", &ValidationError{Field: "answer", Reason: "That answer is too long. Please keep it under 4000 characters."}
	case isSpamRun(answer):
		return "", &ValidationError{Field: "answer", Reason: "Please answer the question in your own words."}
	}
	return answer, nil
}

// isSpamRun reports text made of one repeated character, ignoring spaces.
func isSpamRun(s string) bool {
	var (
		first rune
		count int
	)
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if count == 0 {
			first = r
		} else if r != first {
			return false
		}
		count++
	}
	return count >= minSpamRun
}
