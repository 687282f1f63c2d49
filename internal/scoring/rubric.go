package scoring

import (
	"fmt"
	"strings"
)

// Category is one of the five fixed rubric dimensions.
type Category int

const (
	FanControl Category = iota
	EmotionalInvestment
	Monetization
	Rebuttal
	Pacing

	categoryCount
)

// MaxCategoryPoints is the ceiling of a single category sub-score.
const MaxCategoryPoints = 2

// MaxAnswerPoints is the ceiling of one answer's rubric total.
const MaxAnswerPoints = MaxCategoryPoints * int(categoryCount)

var categoryKeys = [categoryCount]string{
	FanControl:          "control",
	EmotionalInvestment: "investment",
	Monetization:        "monetization",
	Rebuttal:            "rebuttal",
	Pacing:              "pacing",
}

// Categories lists the rubric categories in vector order.
func Categories() []Category {
	return []Category{FanControl, EmotionalInvestment, Monetization, Rebuttal, Pacing}
}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

// ParseCategory resolves a category key as used in the question bank file.
func ParseCategory(key string) (Category, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rubric category %q", key)
}

// Rubric is the per-answer score vector, one entry per category.
type Rubric [categoryCount]int

// Total sums the vector.
func (r Rubric) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

func clampPoints(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxCategoryPoints {
		return MaxCategoryPoints
	}
	return v
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func countContaining(s string, phrases ...string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(s, p) {
			n++
		}
	}
	return n
}

var contractions = []string{"i'm", "i've", "don't", "can't", "won't", "it's", "that's", "you're", "we're"}

// EvaluateRubric scores one answer on all five categories. Pure function of its input.
func EvaluateRubric(text string) Rubric {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	var r Rubric
	r[FanControl] = clampPoints(scoreFanControl(lower))
	r[EmotionalInvestment] = clampPoints(scoreEmotionalInvestment(lower))
	r[Monetization] = clampPoints(scoreMonetization(lower))
	r[Rebuttal] = clampPoints(scoreRebuttal(lower, words))
	r[Pacing] = clampPoints(scorePacing(lower, words))
	return r
}

func scoreFanControl(lower string) int {
	confident := containsAny(lower, "i want", "i'd love", "i can", "when you", "if you", "for me", "i'd like")
	needy := containsAny(lower, "please", "i need", "i hope", "maybe", "i guess", "i think so")
	submissive := containsAny(lower, "sorry", "apologies", "i apologize", "my fault")

	score := 0
	switch {
	case confident && !needy && !submissive:
		score = 2
	case confident || (!needy && !submissive):
		score = 1
	case !needy:
		score = 1
	}

	if strings.Count(lower, "sorry") >= 3 {
		score--
	}
	return score
}

func scoreEmotionalInvestment(lower string) int {
	chosen := containsAny(lower, "for you", "special", "only you", "just for you", "you're different", "you're unique")
	curiosity := containsAny(lower, "imagine", "what if", "think about", "picture", "later", "when", "someday")
	personal := containsAny(lower, "i love", "i'm into", "i'm drawn to", "you make me", "you're", "i feel", "i appreciate")
	connection := containsAny(lower, "miss you", "think about you", "remember", "wish", "understand", "get you", "hear you")
	overCommitting := containsAny(lower, "i love you", "i'm yours", "forever", "always", "promise")

	overGiving := strings.Contains(lower, "free") && containsAny(lower, "pic", "photo", "video")
	overPushing := countContaining(lower, "buy", "pay", "tip now", "send money", "purchase", "order") >= 2

	score := 0
	switch {
	case (chosen || curiosity) && (personal || connection) && !overCommitting:
		score = 2
	case (chosen || curiosity || personal || connection) && !overGiving && !overPushing:
		score = 1
	case (personal || connection) && !overGiving:
		score = 1
	}

	if overGiving {
		return 0
	}
	if overPushing {
		score--
	}
	return score
}

func scoreMonetization(lower string) int {
	desire := containsAny(lower, "spoil", "treat", "unlock", "exclusive", "special", "premium", "vip")
	future := containsAny(lower, "later", "next time", "when you", "if you want", "custom", "personal", "whenever you're ready")
	subtle := containsAny(lower, "tip", "appreciate", "support", "help me", "for me", "when you're feeling generous")
	begging := containsAny(lower, "buy now", "pay me", "send money", "give me", "i need money", "hurry", "limited time")
	overPushing := countContaining(lower, "buy", "pay", "tip", "purchase", "order", "send") >= 4

	if begging || overPushing {
		return 0
	}

	switch {
	case (desire || subtle) && future:
		return 2
	case desire || subtle || future:
		return 1
	}
	return 0
}

func scoreRebuttal(lower string, words int) int {
	objection := containsAny(lower, "free", "expensive", "why", "but", "can't afford", "no money", "cheaper")
	if !objection {
		if containsAny(lower, "yes", "yeah", "sure", "absolutely", "definitely", "of course") || words > 5 {
			return 1
		}
		return 0
	}

	reframe := containsAny(lower, "i understand", "see it as", "think of it as", "it's more like", "you're worth")
	calm := containsAny(lower, "no worries", "totally get it", "that's okay", "i hear you")
	argues := containsAny(lower, "you're wrong", "that's not true", "no you", "you should")

	if argues || strings.Contains(lower, "defend") {
		return 0
	}
	if reframe || calm {
		return 2
	}
	return 0
}

func scorePacing(lower string, words int) int {
	human := containsAny(lower, contractions...) ||
		containsAny(lower, "yeah", "yep", "hmm", "mm", "haha", "lol", "omg", "tbh", "fr")
	corporate := containsAny(lower, "i understand", "i appreciate", "thank you for", "i would be happy to")
	salesy := containsAny(lower, "limited time", "act now", "don't miss out", "buy today", "hurry up")
	overPushing := countContaining(lower, "buy", "pay", "tip", "purchase", "order", "send", "money") >= 4
	fitting := words >= 5 && words <= 60

	if salesy || overPushing {
		return 0
	}

	switch {
	case human && fitting && !corporate:
		return 2
	case human || fitting:
		return 1
	}
	return 0
}
