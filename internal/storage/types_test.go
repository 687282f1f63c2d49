package storage

import (
	"strings"
	"testing"
	"time"

	"interview-screening-bot/internal/scoring"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Approved", FilterApproved, false},
		{" rejected ", FilterRejected, false},
		{"borderline", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	done := func(d scoring.Decision) Candidate { return Candidate{Completed: true, Decision: d} }

	if FilterAll.Matches(Candidate{Decision: scoring.Approved}) {
		t.Fatalf("incomplete candidate matched")
	}
	if !FilterAll.Matches(done(scoring.Borderline)) {
		t.Fatalf("all should match borderline")
	}
	if FilterApproved.Matches(done(scoring.Borderline)) || !FilterApproved.Matches(done(scoring.Approved)) {
		t.Fatalf("approved filter mismatch")
	}
	if FilterRejected.Matches(done(scoring.Borderline)) || !FilterRejected.Matches(done(scoring.NotEligible)) {
		t.Fatalf("rejected filter mismatch")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		c    Candidate
		want string
	}{
		{Candidate{ID: 1, Name: "Mia", Username: "mia_x"}, "Mia"},
		{Candidate{ID: 1, Username: "mia_x"}, "@mia_x"},
		{Candidate{ID: 17}, "User 17"},
	}
	for _, tt := range tests {
		if got := tt.c.DisplayName(); got != tt.want {
			t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidateRecord(t *testing.T) {
	c, rs := record(1, "V", 20, scoring.Borderline, baseTime, 2)
	if err := ValidateRecord(c, rs); err != nil {
		t.Fatalf("ValidateRecord() error = %v", err)
	}

	pending := c
	pending.Decision = scoring.Pending
	if err := ValidateRecord(pending, rs); err == nil {
		t.Fatalf("pending decision accepted")
	}

	open := c
	open.Completed = false
	if err := ValidateRecord(open, rs); err == nil {
		t.Fatalf("incomplete candidate accepted")
	}

	if err := ValidateRecord(c, nil); err == nil {
		t.Fatalf("empty responses accepted")
	}

	foreign := append([]Response(nil), rs...)
	foreign[0].CandidateID = 2
	if err := ValidateRecord(c, foreign); err == nil {
		t.Fatalf("foreign response accepted")
	}
}

func TestWriteReportDetailed(t *testing.T) {
	c, rs := record(8, "Lu", 24, scoring.Approved, baseTime, 2)
	var sb strings.Builder
	err := WriteReport(&sb, []Record{{Candidate: c, Responses: rs}}, ReportOptions{
		Filter:    FilterAll,
		Generated: baseTime,
		Detailed:  true,
	})
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"INTERVIEW RESULTS - 1 completed interview(s)",
		"Generated: 2025-03-14 10:00:00",
		"Candidate: Lu",
		"Username: @userLu",
		"User ID: 8",
		"Decision: APPROVED",
		"Score: 24 | Risk Score: 3",
		"Question 1: Question text",
		"Response: Answer from Lu",
		"Response Time: 6.00 seconds",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportSummaryAndEmpty(t *testing.T) {
	c, _ := record(4, "Max", 10, scoring.NotEligible, baseTime.Add(time.Minute), 1)
	var sb strings.Builder
	if err := WriteReport(&sb, []Record{{Candidate: c}}, ReportOptions{Filter: FilterRejected}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if want := "Max (ID: 4) | Score: 10 | Risk: 3 | Completed: 2025-03-14 10:01:00"; !strings.Contains(sb.String(), want) {
		t.Fatalf("summary missing %q:\n%s", want, sb.String())
	}
	if !strings.Contains(sb.String(), "REJECTED CANDIDATES - 1 candidate(s)") {
		t.Fatalf("summary header wrong:\n%s", sb.String())
	}

	sb.Reset()
	if err := WriteReport(&sb, nil, ReportOptions{Filter: FilterApproved}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if sb.String() != "No approved candidates found.\n" {
		t.Fatalf("empty report = %q", sb.String())
	}
}
