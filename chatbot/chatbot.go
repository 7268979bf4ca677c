// Package chatbot answers free-text questions about a farm analysis with
// templated, data-driven replies. Intent detection is keyword based with
// typo tolerance; the answers are assembled from the analysis bundle and
// a small agronomy knowledge table.
package chatbot

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Reply is one assistant answer.
type Reply struct {
	Content     string   `json:"content"`
	Intent      Intent   `json:"intent"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AnalysisContext is the subset of an analysis the assistant reasons over.
// The HTTP layer fills it from the most recent FarmAnalysis.
type AnalysisContext struct {
	AreaHectares    float64
	CurrentLAI      float64
	LAITrend        string
	RecentRainfall  float64
	NeedsFertilizer bool
	FertilizerConf  float64
	Reasoning       string
	FertilizerType  string
	Timing          string
}

// turn is one stored exchange entry.
type turn struct {
	Role    string    `json:"role"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Assistant routes messages to intent-specific reply builders and keeps a
// bounded per-conversation transcript.
type Assistant struct {
	mu      sync.RWMutex
	history map[string][]turn

	// Now is overridable in tests.
	Now func() time.Time
}

// maxTurns bounds the stored transcript per conversation.
const maxTurns = 50

// NewAssistant returns an assistant with empty history.
func NewAssistant() *Assistant {
	return &Assistant{history: make(map[string][]turn), Now: time.Now}
}

// Respond answers one message. ctx may be nil when no analysis has been
// run yet; the assistant then falls back to general guidance.
func (a *Assistant) Respond(conversationID, message string, ctx *AnalysisContext) Reply {
	intent, conf := ClassifyIntent(message)

	var reply Reply
	switch {
	case intent == IntentLAI && ctx != nil:
		reply = laiReply(ctx)
	case intent == IntentFertilizer && ctx != nil:
		reply = fertilizerReply(ctx)
	case intent == IntentWeather && ctx != nil:
		reply = weatherReply(ctx)
	case intent == IntentCropHealth && ctx != nil:
		reply = cropHealthReply(ctx)
	case intent == IntentRecommendation && ctx != nil:
		reply = recommendationReply(ctx)
	case intent == IntentInterpretation && ctx != nil:
		reply = interpretationReply(ctx)
	case intent == IntentBestPractices:
		reply = bestPracticesReply(message)
	case intent == IntentHelp:
		reply = helpReply()
	default:
		reply = contextualReply(ctx)
	}
	if reply.Confidence == 0 {
		reply.Confidence = conf
	}

	a.record(conversationID, message, reply.Content)
	return reply
}

// History returns a copy of the stored transcript for a conversation.
func (a *Assistant) History(conversationID string) []turn {
	a.mu.RLock()
	defer a.mu.RUnlock()
	src := a.history[conversationID]
	out := make([]turn, len(src))
	copy(out, src)
	return out
}

func (a *Assistant) record(conversationID, userMsg, botMsg string) {
	if conversationID == "" {
		return
	}
	now := a.Now().UTC()
	a.mu.Lock()
	defer a.mu.Unlock()
	h := append(a.history[conversationID],
		turn{Role: "user", Message: userMsg, At: now},
		turn{Role: "assistant", Message: botMsg, At: now},
	)
	if len(h) > maxTurns {
		h = h[len(h)-maxTurns:]
	}
	a.history[conversationID] = h
}

// laiCategory buckets a LAI value for phrasing.
func laiCategory(lai float64) (name, description string) {
	switch {
	case lai < 1:
		return "sparse", "sparse vegetation, early growth or stress"
	case lai < 3:
		return "moderate", "moderate vegetation density"
	case lai < 6:
		return "good", "healthy, dense vegetation"
	default:
		return "very dense", "very dense vegetation, possible over-fertilization"
	}
}

func healthCategory(lai float64) string {
	switch {
	case lai >= 4:
		return "excellent"
	case lai >= 2.5:
		return "good"
	case lai >= 1.5:
		return "fair"
	default:
		return "poor"
	}
}

func laiReply(ctx *AnalysisContext) Reply {
	cat, desc := laiCategory(ctx.CurrentLAI)
	var b strings.Builder
	fmt.Fprintf(&b, "LAI analysis: current value %.2f, trend %s, category %s (%s).\n",
		ctx.CurrentLAI, ctx.LAITrend, cat, desc)
	switch cat {
	case "sparse":
		b.WriteString("Action needed: check soil moisture, consider fertilizer application, monitor for pests, evaluate irrigation needs.")
	case "moderate":
		b.WriteString("Monitoring recommended: continue current management and track growth progress.")
	case "good":
		b.WriteString("Excellent conditions: maintain current practices and watch harvest timing.")
	default:
		b.WriteString("Very dense canopy: check for over-fertilization and ensure air circulation.")
	}
	return Reply{
		Content:     b.String(),
		Intent:      IntentLAI,
		Confidence:  0.9,
		Suggestions: []string{"Ask about fertilizer recommendations", "Check weather impact"},
	}
}

func fertilizerReply(ctx *AnalysisContext) Reply {
	var b strings.Builder
	if ctx.NeedsFertilizer {
		fmt.Fprintf(&b, "Recommendation: apply fertilizer (confidence %.0f%%). %s\n", ctx.FertilizerConf, ctx.Reasoning)
		if ctx.FertilizerType != "" {
			fmt.Fprintf(&b, "Type: %s. Timing: %s.\n", ctx.FertilizerType, ctx.Timing)
		}
		b.WriteString("Check the forecast first and avoid application before heavy rain.")
	} else {
		fmt.Fprintf(&b, "Recommendation: skip fertilizer this cycle (confidence %.0f%%). %s\n", ctx.FertilizerConf, ctx.Reasoning)
		b.WriteString("Keep monitoring crop health and focus on water management instead.")
	}
	return Reply{
		Content:     b.String(),
		Intent:      IntentFertilizer,
		Confidence:  0.95,
		Suggestions: []string{"Ask about application timing", "Check weather conditions"},
	}
}

func weatherReply(ctx *AnalysisContext) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather impact: recent rainfall %.1fmm. ", ctx.RecentRainfall)
	switch {
	case ctx.RecentRainfall > 50:
		b.WriteString("High moisture levels may delay fertilizer application and raise disease risk.")
	case ctx.RecentRainfall < 10:
		b.WriteString("Low moisture; consider irrigation before fertilization and watch for drought stress.")
	default:
		b.WriteString("Optimal moisture conditions for applications and nutrient uptake.")
	}
	return Reply{
		Content:     b.String(),
		Intent:      IntentWeather,
		Confidence:  0.85,
		Suggestions: []string{"Check fertilizer timing", "Monitor soil moisture"},
	}
}

func cropHealthReply(ctx *AnalysisContext) Reply {
	health := healthCategory(ctx.CurrentLAI)
	var b strings.Builder
	fmt.Fprintf(&b, "Crop health: %s (LAI %.2f). ", health, ctx.CurrentLAI)
	switch health {
	case "excellent":
		b.WriteString("Optimal vegetation density and growth patterns.")
	case "good":
		b.WriteString("Healthy development with room for optimization.")
	case "fair":
		b.WriteString("Developing, but could benefit from additional care.")
	default:
		b.WriteString("Low vegetation density indicates stress or early growth; immediate attention needed.")
	}
	b.WriteString(" Watch for yellowing leaves, wilting, and stunted growth.")
	return Reply{
		Content:     b.String(),
		Intent:      IntentCropHealth,
		Confidence:  0.9,
		Suggestions: []string{"Check specific nutrients", "Monitor pest activity"},
	}
}

func recommendationReply(ctx *AnalysisContext) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Farm overview: %.2f hectares, current LAI %.2f.\n", ctx.AreaHectares, ctx.CurrentLAI)
	if ctx.NeedsFertilizer {
		fmt.Fprintf(&b, "Priority: apply fertilizer (confidence %.0f%%). %s\n", ctx.FertilizerConf, ctx.Reasoning)
	} else {
		fmt.Fprintf(&b, "Priority: skip fertilizer this cycle (confidence %.0f%%). %s\n", ctx.FertilizerConf, ctx.Reasoning)
	}
	b.WriteString("Continue weekly LAI assessments and soil moisture checks; schedule the next analysis in 2-3 weeks.")
	return Reply{
		Content:     b.String(),
		Intent:      IntentRecommendation,
		Confidence:  0.95,
		Suggestions: []string{"Schedule next analysis", "Review fertilizer options"},
	}
}

func interpretationReply(ctx *AnalysisContext) Reply {
	_, desc := laiCategory(ctx.CurrentLAI)
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis interpretation: LAI %.2f (%s), trend %s, recent rainfall %.1fmm.\n",
		ctx.CurrentLAI, desc, ctx.LAITrend, ctx.RecentRainfall)
	action := "skip fertilizer"
	if ctx.NeedsFertilizer {
		action = "apply fertilizer"
	}
	fmt.Fprintf(&b, "Overall recommendation: %s with %.0f%% confidence.\n", action, ctx.FertilizerConf)
	b.WriteString("Review each component, factor in local knowledge, and weight decisions by confidence.")
	return Reply{
		Content:     b.String(),
		Intent:      IntentInterpretation,
		Confidence:  0.9,
		Suggestions: []string{"Ask about specific components"},
	}
}

var bestPractices = map[string][]string{
	"soil": {
		"Regular soil testing (annually)",
		"Maintain proper pH levels (6.0-7.0 for most crops)",
		"Add organic matter consistently",
		"Practice conservation tillage",
	},
	"nutrient": {
		"Follow 4R principles (right source, rate, time, place)",
		"Use precision application techniques",
		"Consider slow-release fertilizers",
		"Monitor plant tissue nutrient levels",
	},
	"water": {
		"Use efficient irrigation methods",
		"Monitor soil moisture levels",
		"Implement water conservation techniques",
		"Consider drought-resistant varieties",
	},
}

func bestPracticesReply(message string) Reply {
	lower := strings.ToLower(message)
	topic := ""
	switch {
	case strings.Contains(lower, "soil"):
		topic = "soil"
	case strings.Contains(lower, "water"), strings.Contains(lower, "irrigation"):
		topic = "water"
	case strings.Contains(lower, "nutrient"), strings.Contains(lower, "fertilizer"):
		topic = "nutrient"
	}

	var b strings.Builder
	if topic != "" {
		fmt.Fprintf(&b, "%s management best practices:\n", strings.ToUpper(topic[:1])+topic[1:])
		for i, p := range bestPractices[topic] {
			fmt.Fprintf(&b, "%d. %s\n", i+1, p)
		}
	} else {
		b.WriteString("Agricultural best practices:\n")
		for _, topic := range []string{"soil", "nutrient", "water"} {
			for _, p := range bestPractices[topic] {
				fmt.Fprintf(&b, "- %s\n", p)
			}
		}
	}
	b.WriteString("Start with one practice at a time, monitor results, and document your experience.")
	return Reply{
		Content:     b.String(),
		Intent:      IntentBestPractices,
		Confidence:  0.85,
		Suggestions: []string{"Ask about implementation"},
	}
}

func helpReply() Reply {
	content := "I can interpret LAI values, explain fertilizer recommendations, " +
		"analyze weather impact, assess crop health, and share agricultural best practices. " +
		"Run a farm analysis first for data-driven advice, then ask specific questions " +
		"like \"what does my LAI value mean?\" or \"should I apply fertilizer?\"."
	return Reply{
		Content:     content,
		Intent:      IntentHelp,
		Confidence:  1,
		Suggestions: []string{"Run farm analysis", "Ask about LAI", "Check fertilizer advice"},
	}
}

func contextualReply(ctx *AnalysisContext) Reply {
	if ctx == nil {
		return Reply{
			Content: "To give accurate advice I need farm analysis data. Select a farm area " +
				"on the map and run an analysis first; meanwhile I can answer general " +
				"agricultural questions.",
			Intent:      IntentGeneral,
			Confidence:  0.7,
			Suggestions: []string{"Run farm analysis", "Ask general questions"},
		}
	}
	action := "skipping fertilizer for now"
	if ctx.NeedsFertilizer {
		action = "applying fertilizer"
	}
	content := fmt.Sprintf(
		"Your farm shows a LAI of %.2f and the recommendation is %s (confidence %.0f%%). "+
			"Ask me about LAI interpretation, fertilizer decisions, or weather impact for details.",
		ctx.CurrentLAI, action, ctx.FertilizerConf)
	return Reply{
		Content:     content,
		Intent:      IntentGeneral,
		Confidence:  0.6,
		Suggestions: []string{"Ask about LAI", "Check fertilizer advice", "Weather impact"},
	}
}
