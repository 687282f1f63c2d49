package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"interview-screening-bot/internal/questions"
	"interview-screening-bot/internal/scoring"
)

//go:embed interview.yaml
var defaultQuestions []byte

// QuestionFile is the YAML layout of a question bank.
type QuestionFile struct {
	QuestionsPerInterview int                  `yaml:"questions_per_interview"`
	Questions             []questions.Question `yaml:"questions"`
}

// LoadQuestions reads the bank from filename, or the built-in pool when filename is empty.
func LoadQuestions(filename string) (*QuestionFile, error) {
	data := defaultQuestions
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			return nil, &ConfigurationError{Key: "QUESTIONS_FILE", Reason: "cannot read " + filename, Err: err}
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var qf QuestionFile
	if err := dec.Decode(&qf); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigurationError{Key: "QUESTIONS_FILE", Reason: "invalid YAML", Err: err}
	}

	if err := validateQuestions(&qf); err != nil {
		return nil, &ConfigurationError{Key: "QUESTIONS_FILE", Reason: "invalid question bank", Err: err}
	}
	return &qf, nil
}

func validateQuestions(qf *QuestionFile) error {
	if n := qf.QuestionsPerInterview; n != 0 && n != questions.PerInterview {
		return fmt.Errorf("questions_per_interview must be %d, got %d", questions.PerInterview, n)
	}
	if len(qf.Questions) == 0 {
		return errors.New("no questions defined")
	}
	for _, q := range qf.Questions {
		for _, key := range q.Exercises {
			if _, err := scoring.ParseCategory(key); err != nil {
				return fmt.Errorf("question %q: %w", q.ID, err)
			}
		}
	}
	return nil
}

// Bank builds the immutable question bank.
func (qf *QuestionFile) Bank() (*questions.Bank, error) {
	bank, err := questions.NewBank(qf.Questions)
	if err != nil {
		return nil, &ConfigurationError{Key: "QUESTIONS_FILE", Reason: "invalid question bank", Err: err}
	}
	return bank, nil
}
