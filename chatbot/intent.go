package chatbot

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Intent labels a recognized question category.
type Intent string

const (
	IntentLAI            Intent = "lai_question"
	IntentFertilizer     Intent = "fertilizer_question"
	IntentWeather        Intent = "weather_question"
	IntentCropHealth     Intent = "crop_health"
	IntentRecommendation Intent = "recommendation"
	IntentInterpretation Intent = "analysis_interpretation"
	IntentBestPractices  Intent = "best_practices"
	IntentHelp           Intent = "general_help"
	IntentGeneral        Intent = "general"
)

// intentKeywords maps each intent to the vocabulary that signals it.
// Matching is fuzzy, so "fertilzer" and "wether" still land.
var intentKeywords = map[Intent][]string{
	IntentLAI:            {"lai", "leaf", "vegetation", "density", "index", "canopy"},
	IntentFertilizer:     {"fertilizer", "nutrient", "npk", "nitrogen", "phosphorus", "potassium"},
	IntentWeather:        {"weather", "rain", "rainfall", "temperature", "climate", "drought", "moisture"},
	IntentCropHealth:     {"health", "crop", "plant", "growth", "condition"},
	IntentRecommendation: {"recommend", "recommendation", "advice", "suggest", "should"},
	IntentInterpretation: {"analysis", "result", "data", "interpret", "explain", "mean"},
	IntentBestPractices:  {"practice", "practices", "tip", "improve", "optimize"},
	IntentHelp:           {"help", "can", "how"},
}

// intentPriority breaks score ties deterministically, most specific first.
var intentPriority = []Intent{
	IntentLAI, IntentFertilizer, IntentWeather, IntentCropHealth,
	IntentRecommendation, IntentInterpretation, IntentBestPractices, IntentHelp,
}

// ClassifyIntent scores a free-text message against the keyword tables and
// returns the best intent plus a 0..1 confidence. Keyword hits tolerate
// small typos via edit distance.
func ClassifyIntent(message string) (Intent, float64) {
	tokens := tokenize(message)
	if len(tokens) == 0 {
		return IntentGeneral, 0
	}

	best := IntentGeneral
	bestScore := 0
	for _, intent := range intentPriority {
		score := 0
		for _, kw := range intentKeywords[intent] {
			if matchesAny(tokens, kw) {
				score++
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	if bestScore == 0 {
		return IntentGeneral, 0
	}
	conf := float64(bestScore) / float64(len(intentKeywords[best]))
	if conf > 1 {
		conf = 1
	}
	return best, conf
}

func tokenize(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// matchesAny reports whether any token is the keyword or a near miss.
// Tolerance scales with keyword length: exact under 5 runes, one edit up
// to 7, two edits beyond.
func matchesAny(tokens []string, keyword string) bool {
	limit := 0
	switch n := len([]rune(keyword)); {
	case n >= 8:
		limit = 2
	case n >= 5:
		limit = 1
	}
	for _, tok := range tokens {
		if tok == keyword {
			return true
		}
		if limit > 0 && levenshtein.ComputeDistance(tok, keyword) <= limit {
			return true
		}
	}
	return false
}
