package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"interview-screening-bot/internal/questions"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"BOT_TOKEN":     " 123:abc ",
		"ADMIN_CHAT_ID": "42, 7;42",
	})

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if got := cfg.Admins.IDs(); len(got) != 2 || got[0] != 7 || got[1] != 42 {
		t.Fatalf("admins = %v", got)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "interview.db" || cfg.Storage.ResultsDir != "results" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Telegram.RateLimitPerMinute != 20 || cfg.Telegram.PollTimeout != 30*time.Second {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Gemini.Enabled() || cfg.Gemini.Timeout != 15*time.Second {
		t.Fatalf("gemini = %+v", cfg.Gemini)
	}
}

func TestLoadOverrides(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "gemini.key")
	if err := os.WriteFile(keyFile, []byte("g-key\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	setEnv(t, map[string]string{
		"BOT_TOKEN":               "t",
		"ADMIN_CHAT_ID":           "1",
		"STORAGE_DRIVER":          "Postgres",
		"DATABASE_URL":            "postgres://localhost/interview",
		"QUESTIONS_PER_INTERVIEW": "5",
		"RATE_LIMIT_PER_MINUTE":   "5",
		"GEMINI_API_KEY_FILE":     keyFile,
		"GEMINI_TIMEOUT":          "3s",
		"API_ADDR":                ":8080",
	})

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Interview.QuestionsPerInterview != questions.PerInterview {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Telegram.RateLimitPerMinute != 5 || cfg.API.Addr != ":8080" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.Gemini.Enabled() || cfg.Gemini.APIKey != "g-key" || cfg.Gemini.Timeout != 3*time.Second {
		t.Fatalf("gemini = %+v", cfg.Gemini)
	}
}

func TestLoadTokenFromFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte("file-token\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	setEnv(t, map[string]string{"BOT_TOKEN_FILE": tokenFile, "ADMIN_CHAT_ID": "5"})

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{"missing token", map[string]string{"ADMIN_CHAT_ID": "1"}, "BOT_TOKEN"},
		{"missing admins", map[string]string{"BOT_TOKEN": "t"}, "ADMIN_CHAT_ID"},
		{"bad admin", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1,abc"}, "ADMIN_CHAT_ID"},
		{"unknown driver", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "STORAGE_DRIVER": "mongo"}, "STORAGE_DRIVER"},
		{"postgres without url", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "STORAGE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"zero rate limit", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "RATE_LIMIT_PER_MINUTE": "0"}, "RATE_LIMIT_PER_MINUTE"},
		{"short interview", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "QUESTIONS_PER_INTERVIEW": "2"}, "QUESTIONS_PER_INTERVIEW"},
		{"long interview", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "QUESTIONS_PER_INTERVIEW": "8"}, "QUESTIONS_PER_INTERVIEW"},
		{"negative interview", map[string]string{"BOT_TOKEN": "t", "ADMIN_CHAT_ID": "1", "QUESTIONS_PER_INTERVIEW": "-1"}, "QUESTIONS_PER_INTERVIEW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load(viper.New())
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Load() error = %v, want ConfigurationError", err)
			}
			if ce.Key != tt.key {
				t.Fatalf("ConfigurationError.Key = %q, want %q", ce.Key, tt.key)
			}
		})
	}
}

func TestLoadResultsSkipsBotSettings(t *testing.T) {
	setEnv(t, map[string]string{"STORAGE_DRIVER": "file", "RESULTS_DIR": "out"})
	cfg, err := LoadResults(viper.New())
	if err != nil {
		t.Fatalf("LoadResults() error = %v", err)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.ResultsDir != "out" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("INTERVIEW_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("INTERVIEW_TEST_VALUE", "")
	os.Unsetenv("INTERVIEW_TEST_VALUE")

	if err := LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("INTERVIEW_TEST_VALUE"); got != "from-file" {
		t.Fatalf("env = %q", got)
	}

	missing := filepath.Join(dir, "missing.env")
	if err := LoadEnvFile(missing, false); err != nil {
		t.Fatalf("implicit missing file error = %v", err)
	}
	if err := LoadEnvFile(missing, true); err == nil {
		t.Fatalf("explicit missing file accepted")
	}
}

func TestParseAdminSet(t *testing.T) {
	s, err := ParseAdminSet(" 10 ,20\n30 ")
	if err != nil {
		t.Fatalf("ParseAdminSet() error = %v", err)
	}
	if s.Len() != 3 || !s.Contains(20) || s.Contains(40) {
		t.Fatalf("set = %v", s.IDs())
	}
	ids := s.IDs()
	ids[0] = 99
	if s.Contains(99) || s.IDs()[0] != 10 {
		t.Fatalf("IDs() must return a copy")
	}

	if _, err := ParseAdminSet(" , ; "); err == nil {
		t.Fatalf("empty admin list accepted")
	}
}

func TestDefaultQuestionBank(t *testing.T) {
	qf, err := LoadQuestions("")
	if err != nil {
		t.Fatalf("LoadQuestions() error = %v", err)
	}
	bank, err := qf.Bank()
	if err != nil {
		t.Fatalf("Bank() error = %v", err)
	}
	if bank.Len() < 40 {
		t.Fatalf("default pool has %d questions, want at least 40", bank.Len())
	}
	if qf.QuestionsPerInterview != questions.PerInterview {
		t.Fatalf("questions_per_interview = %d, want %d", qf.QuestionsPerInterview, questions.PerInterview)
	}
}

func TestLoadQuestionsFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	good := write("good.yaml", `questions:
  - id: a
    text: "First?"
    exercises: [control]
  - id: b
    text: "Second?"
    exercises: [pacing, rebuttal]
`)
	qf, err := LoadQuestions(good)
	if err != nil {
		t.Fatalf("LoadQuestions() error = %v", err)
	}
	if len(qf.Questions) != 2 || qf.Questions[1].Exercises[0] != "pacing" {
		t.Fatalf("file = %+v", qf)
	}

	bad := map[string]string{
		"category.yaml": "questions:\n  - id: a\n    text: x\n    exercises: [charisma]\n",
		"unknown.yaml":  "questions:\n  - id: a\n    text: x\n    weight: 3\n",
		"empty.yaml":    "questions_per_interview: 5\n",
		"length.yaml":   "questions_per_interview: 8\nquestions:\n  - id: a\n    text: x\n",
	}
	for name, body := range bad {
		_, err := LoadQuestions(write(name, body))
		var ce *ConfigurationError
		if !errors.As(err, &ce) || !strings.Contains(ce.Key, "QUESTIONS_FILE") {
			t.Fatalf("%s: error = %v, want ConfigurationError", name, err)
		}
	}

	if _, err := LoadQuestions(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestSmallBankExhaustsPool(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "four.yaml")
	body := "questions:\n"
	for _, id := range []string{"a", "b", "c", "d"} {
		body += "  - id: " + id + "\n    text: \"Q " + id + "?\"\n"
	}
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	qf, err := LoadQuestions(p)
	if err != nil {
		t.Fatalf("LoadQuestions() error = %v", err)
	}
	bank, err := qf.Bank()
	if err != nil {
		t.Fatalf("Bank() error = %v", err)
	}
	_, err = questions.NewSelector(bank, questions.PerInterview, nil)
	if !errors.Is(err, questions.ErrPoolExhausted) {
		t.Fatalf("NewSelector() error = %v, want ErrPoolExhausted", err)
	}
}
