package scoring

import "testing"

func TestDecideBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score, risk int
		want        Decision
	}{
		{24, 6, Approved},
		{50, 0, Approved},
		{24, 7, Borderline},
		{23, 6, Borderline},
		{23, 0, Borderline},
		{18, 8, Borderline},
		{18, 9, NotEligible},
		{17, 0, NotEligible},
		{30, 9, NotEligible},
		{0, 0, NotEligible},
	}
	for _, c := range cases {
		if got := Decide(c.score, c.risk); got != c.want {
			t.Fatalf("Decide(%d,%d)=%q, want %q", c.score, c.risk, got, c.want)
		}
	}
}

func uniform(perAnswer, risk int) []Result {
	results := make([]Result, 5)
	for i := range results {
		var r Rubric
		left := perAnswer
		for c := range r {
			r[c] = min(left, MaxCategoryPoints)
			left -= r[c]
		}
		results[i] = Result{Rubric: r, Risk: risk}
	}
	return results
}

func TestDecideScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []Result
		total   int
		risk    int
		want    Decision
	}{
		{name: "strong answers", results: uniform(6, 4), total: 30, risk: 4, want: Approved},
		{name: "middling answers", results: uniform(4, 7), total: 20, risk: 7, want: Borderline},
		{name: "weak answers", results: uniform(2, 9), total: 10, risk: 9, want: NotEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			total := TotalScore(tt.results)
			risk := AggregateRisk(tt.results)
			if total != tt.total || risk != tt.risk {
				t.Fatalf("expected total=%d risk=%d, got total=%d risk=%d", tt.total, tt.risk, total, risk)
			}
			if got := Decide(total, risk); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAggregateRiskIsMaximum(t *testing.T) {
	t.Parallel()

	results := []Result{{Risk: 1}, {Risk: 9}, {Risk: 2}, {Risk: 0}, {Risk: 3}}
	if got := AggregateRisk(results); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
	if got := AggregateRisk(nil); got != 0 {
		t.Fatalf("expected 0 for no answers, got %d", got)
	}
}

func TestDecisionFinal(t *testing.T) {
	t.Parallel()

	if Pending.Final() {
		t.Fatalf("pending must not be final")
	}
	for _, d := range []Decision{Approved, Borderline, NotEligible} {
		if !d.Final() || !d.Valid() {
			t.Fatalf("%q must be a valid final decision", d)
		}
	}
	if Decision("MAYBE").Valid() {
		t.Fatalf("unknown decision reported as valid")
	}
}
