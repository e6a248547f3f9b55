package chat

import (
	"strings"
	"testing"
)

func TestDetectTopic(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"we run HubSpot for our pipeline", "CRM + Data Setup"},
		{"need a webhook into billing", "CRM Integrations"},
		{"set up a follow up sequence", "Automation & Workflows"},
		{"the upload is broken", "Support / Troubleshooting"},
		{"tell me a joke", "General"},
	}

	for _, tt := range tests {
		if got := DetectTopic(tt.message); got != tt.want {
			t.Fatalf("DetectTopic(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestBuildReplyListsServicesOnRequest(t *testing.T) {
	reply := BuildReply("what services do you offer?")
	for _, svc := range serviceCatalog {
		if !strings.Contains(reply, svc.name) {
			t.Fatalf("expected catalog entry %q in reply, got %q", svc.name, reply)
		}
	}
}

func TestBuildReplyAnswersPricingQuestions(t *testing.T) {
	reply := BuildReply("how much does it cost?")
	if !strings.Contains(reply, "Pricing depends on scope") {
		t.Fatalf("expected pricing note, got %q", reply)
	}
	if !strings.Contains(reply, "Which CRM") {
		t.Fatalf("expected qualification questions, got %q", reply)
	}
}

func TestBuildReplyUsesTopicDescription(t *testing.T) {
	reply := BuildReply("our zapier integration fails")
	if !strings.Contains(reply, "CRM Integrations") {
		t.Fatalf("expected topic reply, got %q", reply)
	}
}

func TestBuildReplyFallsBackToGenericPrompt(t *testing.T) {
	reply := BuildReply("hmm")
	if !strings.Contains(reply, "Tell me what you're trying to do") {
		t.Fatalf("expected generic prompt, got %q", reply)
	}
}
