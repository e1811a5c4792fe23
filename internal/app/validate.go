package app

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"quiz-duel-service/internal/domain"
)

const (
	minNameLen     = 2
	maxNameLen     = 20
	minQuestionLen = 5
	maxQuestionLen = 500
	maxOptionLen   = 200
	maxAnswerLen   = 100
	codeLen        = 6
)

var (
	namePattern = regexp.MustCompile(`^[\p{L} ]+$`)
	codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// Sanitize collapses whitespace and strips angle brackets.
func Sanitize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// ValidateName returns the cleaned display name.
func ValidateName(name string) (string, error) {
	clean := strings.Join(strings.Fields(name), " ")
	if clean == "" {
		return "", domain.Invalid("name is required")
	}
	n := utf8.RuneCountInString(clean)
	if n < minNameLen {
		return "", domain.Invalid("name must be at least 2 characters")
	}
	if n > maxNameLen {
		return "", domain.Invalid("name must be at most 20 characters")
	}
	if !namePattern.MatchString(clean) {
		return "", domain.Invalid("name may only contain letters and spaces")
	}
	return clean, nil
}

// ValidateCode canonicalizes a room code to uppercase and checks its shape.
func ValidateCode(code string) (string, error) {
	clean := CanonicalCode(code)
	if clean == "" {
		return "", domain.Invalid("room code is required")
	}
	if len(clean) != codeLen {
		return "", domain.Invalid("room code must be exactly 6 characters")
	}
	if !codePattern.MatchString(clean) {
		return "", domain.Invalid("room code may only contain letters and digits")
	}
	return clean, nil
}

// CanonicalCode is the single place room codes are normalized.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateAnswer returns the trimmed submission.
func ValidateAnswer(answer string) (string, error) {
	clean := strings.TrimSpace(answer)
	if clean == "" {
		return "", domain.Invalid("answer cannot be empty")
	}
	if utf8.RuneCountInString(clean) > maxAnswerLen {
		return "", domain.Invalid("answer must be at most 100 characters")
	}
	return clean, nil
}

// ValidateQuestion checks a publish-question payload and derives the round's answer key.
// Options switch the round to single-choice mode; otherwise a free-text answer is required.
func ValidateQuestion(in domain.QuestionInput) (string, domain.AnswerSpec, error) {
	question := Sanitize(in.Question)
	n := utf8.RuneCountInString(question)
	if n < minQuestionLen {
		return "", domain.AnswerSpec{}, domain.Invalid("question must be at least 5 characters")
	}
	if n > maxQuestionLen {
		return "", domain.AnswerSpec{}, domain.Invalid("question must be at most 500 characters")
	}

	if in.Options != nil {
		opts := domain.Options{
			A: Sanitize(in.Options.A),
			B: Sanitize(in.Options.B),
			C: Sanitize(in.Options.C),
			D: Sanitize(in.Options.D),
		}
		for _, key := range domain.ChoiceKeys {
			text, _ := opts.Get(key)
			if text == "" {
				return "", domain.AnswerSpec{}, domain.Invalid("options must include a, b, c and d")
			}
			if utf8.RuneCountInString(text) > maxOptionLen {
				return "", domain.AnswerSpec{}, domain.Invalid("options must be at most 200 characters")
			}
		}
		key := domain.Normalize(in.CorrectKey)
		if _, ok := opts.Get(key); !ok {
			return "", domain.AnswerSpec{}, domain.Invalid("correct key must be a, b, c or d")
		}
		return question, domain.AnswerSpec{
			Mode:    domain.AnswerChoice,
			Key:     key,
			Display: key,
			Options: &opts,
		}, nil
	}

	answer, err := ValidateAnswer(in.Answer)
	if err != nil {
		return "", domain.AnswerSpec{}, err
	}
	answer = Sanitize(answer)
	return question, domain.AnswerSpec{
		Mode:    domain.AnswerFreeText,
		Key:     domain.Normalize(answer),
		Display: answer,
	}, nil
}
