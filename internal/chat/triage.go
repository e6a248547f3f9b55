package chat

import "strings"

// Triage intents.
const (
	IntentGeneral = "general"
	IntentLead    = "lead"
	IntentTicket  = "ticket"
)

// SourceLeadCapture marks requests coming from a lead capture form. They are
// always triaged as leads regardless of message text.
const SourceLeadCapture = "lead_capture"

// SourceHelper marks requests from the embedded helper widget, which gets a
// narrower assistant persona.
const SourceHelper = "helper"

var leadKeywords = []string{"price", "pricing", "quote", "cost", "book", "demo", "buy", "service"}
var ticketKeywords = []string{"error", "bug", "issue", "not working", "problem", "help"}

// Triage classifies a message into an intent with a coarse confidence. Lead
// keywords are checked before ticket keywords, so a message matching both
// buckets is a lead. A lead_capture source forces the lead intent.
func Triage(message, source string) (string, float64) {
	text := strings.ToLower(message)

	intent := IntentGeneral
	if containsAny(text, leadKeywords) {
		intent = IntentLead
	} else if containsAny(text, ticketKeywords) {
		intent = IntentTicket
	}
	if source == SourceLeadCapture {
		intent = IntentLead
	}

	if intent == IntentGeneral {
		return intent, 0.3
	}
	return intent, 0.6
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
