package chat

import "testing"

func TestTriage(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		source         string
		wantIntent     string
		wantConfidence float64
	}{
		{"pricing question is a lead", "What does pricing look like?", "", IntentLead, 0.6},
		{"demo request is a lead", "Can we book a demo next week?", "", IntentLead, 0.6},
		{"bug report is a ticket", "The upload throws an error every time", "", IntentTicket, 0.6},
		{"not working phrase is a ticket", "the sync is not working", "", IntentTicket, 0.6},
		{"smalltalk is general", "hello, who are you?", "", IntentGeneral, 0.3},
		{"lead keywords win over ticket keywords", "the price calculator shows an error", "", IntentLead, 0.6},
		{"uppercase keywords still match", "SEND ME A QUOTE", "", IntentLead, 0.6},
		{"lead capture source forces lead", "just saying hi", SourceLeadCapture, IntentLead, 0.6},
		{"lead capture overrides ticket keywords", "there is a bug", SourceLeadCapture, IntentLead, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, confidence := Triage(tt.message, tt.source)
			if intent != tt.wantIntent {
				t.Fatalf("expected intent %s, got %s", tt.wantIntent, intent)
			}
			if confidence != tt.wantConfidence {
				t.Fatalf("expected confidence %v, got %v", tt.wantConfidence, confidence)
			}
		})
	}
}
