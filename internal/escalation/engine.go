// Package escalation decides, on every turn, whether the automated agent
// keeps talking or hands the session off to a human operator.
package escalation

import (
	"math"
	"strings"

	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
)

// Escalation reasons returned by Reason.
const (
	ReasonHumanRequest      = "user_requested_human"
	ReasonFrustration       = "user_frustration"
	ReasonRepeatedFailures  = "repeated_low_confidence"
	ReasonVeryLowConfidence = "very_low_confidence"
	ReasonLowConfidence     = "low_confidence"
	ReasonAIUnsure          = "ai_unsure"
	ReasonUnknown           = "unknown"
)

// frustrationKeywords are direct mentions of dissatisfaction.
var frustrationKeywords = []string{
	"you don't understand",
	"you dont understand",
	"that's wrong",
	"thats wrong",
	"wrong again",
	"not correct",
	"incorrect",
	"horrible",
	"useless",
	"no help",
	"not helping",
	"doesn't work",
	"doesnt work",
	"stupid",
	"terrible",
	"awful",
	"worst",
	"waste of time",
	"garbage",
	"ridiculous",
}

// negativePatterns is an independent second detector for phrased-out
// negative sentiment that the keyword list misses.
var negativePatterns = []string{
	"you are useless",
	"you're useless",
	"this is useless",
	"completely useless",
	"totally useless",
	"not useful at all",
	"you are not helping",
	"this doesn't help",
	"this does not help",
	"you are bad at this",
}

// humanRequestPhrases mark an explicit ask for a person.
var humanRequestPhrases = []string{
	"human agent",
	"real person",
	"real human",
	"speak to someone",
	"talk to someone",
	"speak to a person",
	"talk to a person",
	"speak to an agent",
	"talk to an agent",
	"customer support",
	"customer service",
	"complaint",
	"operator",
	"advisor",
	"a human",
}

// hedgePhrases are the fixed "AI is unsure" markers looked for in answers.
var hedgePhrases = []string{
	"i don't know",
	"i do not know",
	"i'm not sure",
	"i am not sure",
	"not sure",
	"no information",
	"i can't find",
	"i cannot find",
	"sorry",
	"uncertain",
	"maybe",
}

// notFoundPhrases are the fixed "not found" markers looked for in answers.
var notFoundPhrases = []string{
	"not available",
	"is unavailable",
	"not in our catalog",
	"not in our database",
	"no such product",
	"product not found",
	"we could not find",
	"we can't find",
	"out of catalog",
}

// Confidence thresholds used by the decision chain.
const (
	lowConfidenceThreshold     = 0.4
	veryLowConfidenceThreshold = 0.3
	repeatedFailureLimit       = 2
)

func containsAny(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ComputeConfidence scores how trustworthy an automated answer is. The score
// is an additive heuristic, not a calibrated probability: deterministic in
// its inputs, clamped to [0,1] and rounded to 2 decimals.
func ComputeConfidence(retrievedContext []string, answer, detectedIntent string) float64 {
	score := 0.0

	if intent.Recognized(detectedIntent) {
		score += 0.25
	}
	if len(retrievedContext) > 0 {
		score += 0.35
	}
	if len(strings.Fields(answer)) > 6 {
		score += 0.20
	}
	if containsAny(answer, hedgePhrases) {
		score -= 0.30
	}
	if containsAny(answer, notFoundPhrases) {
		score -= 0.40
	}

	score = math.Min(math.Max(score, 0), 1)
	return math.Round(score*100) / 100
}

// IsLowConfidence reports whether a past turn's score counts toward the
// repeated-failure limit.
func IsLowConfidence(score float64) bool {
	return score <= lowConfidenceThreshold
}

// DetectHumanRequest reports whether the message explicitly asks for a
// human operator.
func DetectHumanRequest(message string) bool {
	return containsAny(message, humanRequestPhrases)
}

// DetectFrustration reports user frustration. Two independent detectors,
// either one is sufficient: direct keywords and negative-sentiment patterns.
func DetectFrustration(message string) bool {
	return containsAny(message, frustrationKeywords) || containsAny(message, negativePatterns)
}

// ShouldEscalate is the per-turn gate, evaluated as an ordered,
// short-circuiting priority chain. The order is part of the contract:
//
//	1. explicit human request
//	2. frustration
//	3. answer contains a hedge phrase
//	4. confidence <= 0.4
//	5. two or more previous low-confidence turns
func ShouldEscalate(message string, confidence float64, answer string, previousLowConfidenceCount int) bool {
	if DetectHumanRequest(message) {
		return true
	}
	if DetectFrustration(message) {
		return true
	}
	if containsAny(answer, hedgePhrases) {
		return true
	}
	if confidence <= lowConfidenceThreshold {
		return true
	}
	if previousLowConfidenceCount >= repeatedFailureLimit {
		return true
	}
	return false
}

// Reason re-derives a human-readable reason for an escalation. Note it uses
// a different priority order than ShouldEscalate, so callers must not assume
// the two agree on which reason fired — only that the escalate/continue
// boolean matches when frustration or a human request triggered it.
func Reason(message string, confidence float64, answer string, previousLowConfidenceCount int) string {
	switch {
	case DetectFrustration(message):
		return ReasonFrustration
	case previousLowConfidenceCount >= repeatedFailureLimit:
		return ReasonRepeatedFailures
	case confidence <= veryLowConfidenceThreshold:
		return ReasonVeryLowConfidence
	case confidence <= lowConfidenceThreshold:
		return ReasonLowConfidence
	case containsAny(answer, hedgePhrases):
		return ReasonAIUnsure
	default:
		return ReasonUnknown
	}
}
