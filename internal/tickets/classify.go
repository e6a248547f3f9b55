package tickets

import "strings"

// Classification is the keyword-derived triage metadata stored on a ticket.
type Classification struct {
	Tag       string
	Sentiment string
	Urgency   string
}

var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{"billing", []string{"billing", "invoice", "refund", "charge", "payment"}},
	{"integration", []string{"integration", "api", "webhook", "sync"}},
	{"access", []string{"login", "access", "password", "2fa", "auth"}},
	{"performance", []string{"slow", "latency", "performance", "timeout"}},
	{"bug", []string{"bug", "error", "issue", "broken", "crash", "500"}},
}

var negativeKeywords = []string{"angry", "frustrated", "upset", "terrible", "unacceptable"}
var positiveKeywords = []string{"thanks", "appreciate", "great", "love"}

var highUrgencyKeywords = []string{"urgent", "asap", "down", "outage", "can't", "cannot", "blocked"}
var mediumUrgencyKeywords = []string{"soon", "today", "quick"}

// Classify derives tag, sentiment and urgency from the message text using
// ordered keyword tables. Matching is case-insensitive substring; the first
// matching tag bucket wins.
func Classify(text string) Classification {
	t := strings.ToLower(text)

	tag := "general"
	for _, bucket := range tagKeywords {
		if containsAny(t, bucket.keywords) {
			tag = bucket.tag
			break
		}
	}

	sentiment := "neutral"
	if containsAny(t, negativeKeywords) {
		sentiment = "negative"
	} else if containsAny(t, positiveKeywords) {
		sentiment = "positive"
	}

	urgency := "low"
	if containsAny(t, highUrgencyKeywords) {
		urgency = "high"
	} else if containsAny(t, mediumUrgencyKeywords) {
		urgency = "medium"
	}

	return Classification{Tag: tag, Sentiment: sentiment, Urgency: urgency}
}

var macrosByTag = map[string][]string{
	"billing": {
		"Thanks for flagging this. Can you share the invoice ID and the last 4 digits of the card used?",
		"I can look into the charge right away. What plan are you on and when did you notice the issue?",
	},
	"integration": {
		"Got it. Which integration (API/webhook) is failing and when did it start?",
		"Can you share the request ID or payload so I can trace it on our side?",
	},
	"access": {
		"Thanks. Are you seeing an invalid password error or a 2FA issue?",
		"Please confirm the email and whether this happens on all devices.",
	},
	"performance": {
		"Sorry about the slowdown. Which page or action feels slow, and roughly when did it start?",
		"Can you share browser + region so we can check latency?",
	},
	"bug": {
		"Thanks for the report. Can you share steps to reproduce and the exact error message?",
		"Which browser/device were you using when this happened?",
	},
	"general": {
		"Thanks for reaching out. Can you share more details so we can help quickly?",
	},
}

// SuggestedMacros returns canned agent replies for the ticket's tag.
func SuggestedMacros(tag string) []string {
	if macros, ok := macrosByTag[tag]; ok {
		return macros
	}
	return macrosByTag["general"]
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
