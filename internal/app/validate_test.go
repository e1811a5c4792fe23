package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-duel-service/internal/domain"
)

func isValidation(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Ada   Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	name, err = ValidateName("Zoë")
	require.NoError(t, err)
	assert.Equal(t, "Zoë", name)

	for _, bad := range []string{"", "   ", "A", strings.Repeat("a", 21), "R2D2", "<script>"} {
		_, err := ValidateName(bad)
		assert.True(t, isValidation(err), "expected validation error for %q", bad)
	}
}

func TestValidateCode(t *testing.T) {
	code, err := ValidateCode(" abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)

	for _, bad := range []string{"", "ABC12", "ABC1234", "ABC-12", "ÄBC123"} {
		_, err := ValidateCode(bad)
		assert.True(t, isValidation(err), "expected validation error for %q", bad)
	}
}

func TestValidateAnswer(t *testing.T) {
	answer, err := ValidateAnswer("  Paris ")
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)

	_, err = ValidateAnswer("   ")
	assert.True(t, isValidation(err))
	_, err = ValidateAnswer(strings.Repeat("x", 101))
	assert.True(t, isValidation(err))
}

func TestValidateQuestionChoice(t *testing.T) {
	question, answer, err := ValidateQuestion(domain.QuestionInput{
		Question:   "  Which is   the red planet? ",
		Options:    &domain.Options{A: "Venus", B: "<b>Mars</b>", C: "Jupiter", D: "Mercury"},
		CorrectKey: " B ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Which is the red planet?", question)
	assert.Equal(t, domain.AnswerChoice, answer.Mode)
	assert.Equal(t, "b", answer.Key)
	require.NotNil(t, answer.Options)
	assert.Equal(t, "bMars/b", answer.Options.B)
}

func TestValidateQuestionFreeText(t *testing.T) {
	_, answer, err := ValidateQuestion(domain.QuestionInput{Question: "Capital of Peru?", Answer: "  Lima  "})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerFreeText, answer.Mode)
	assert.Equal(t, "lima", answer.Key)
	assert.Equal(t, "Lima", answer.Display)
	assert.Nil(t, answer.Options)
}

func TestValidateQuestionRejects(t *testing.T) {
	full := &domain.Options{A: "1", B: "2", C: "3", D: "4"}
	cases := map[string]domain.QuestionInput{
		"short question": {Question: "Hm?", Answer: "x"},
		"long question":  {Question: strings.Repeat("q", 501), Answer: "x"},
		"missing option": {Question: "Pick one", Options: &domain.Options{A: "1", B: "2", C: "3"}, CorrectKey: "a"},
		"long option":    {Question: "Pick one", Options: &domain.Options{A: strings.Repeat("o", 201), B: "2", C: "3", D: "4"}, CorrectKey: "a"},
		"bad key":        {Question: "Pick one", Options: full, CorrectKey: "e"},
		"empty key":      {Question: "Pick one", Options: full},
		"missing answer": {Question: "Capital of Peru?"},
		"blank question": {Question: "     ", Answer: "x"},
	}
	for name, in := range cases {
		_, _, err := ValidateQuestion(in)
		assert.True(t, isValidation(err), name)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a b c", Sanitize("  a \n b\t\tc "))
	assert.Equal(t, "scriptalert(1)/script", Sanitize("<script>alert(1)</script>"))
}
