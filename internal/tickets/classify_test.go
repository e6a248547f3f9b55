package tickets

import "testing"

func TestClassifyTag(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"I was charged twice on my invoice", "billing"},
		{"the webhook sync stopped", "integration"},
		{"cannot login after password reset", "access"},
		{"dashboard is very slow today", "performance"},
		{"we hit a 500 on save", "bug"},
		{"how do I export data?", "general"},
	}

	for _, tt := range tests {
		if got := Classify(tt.message); got.Tag != tt.want {
			t.Fatalf("Classify(%q).Tag = %q, want %q", tt.message, got.Tag, tt.want)
		}
	}
}

func TestClassifyTagBucketOrder(t *testing.T) {
	// Billing keywords outrank bug keywords when both appear.
	got := Classify("refund failed with an error")
	if got.Tag != "billing" {
		t.Fatalf("expected billing to win, got %q", got.Tag)
	}
}

func TestClassifySentiment(t *testing.T) {
	if got := Classify("this is unacceptable, I am frustrated"); got.Sentiment != "negative" {
		t.Fatalf("expected negative, got %q", got.Sentiment)
	}
	if got := Classify("thanks, you folks are great"); got.Sentiment != "positive" {
		t.Fatalf("expected positive, got %q", got.Sentiment)
	}
	if got := Classify("the page does not load"); got.Sentiment != "neutral" {
		t.Fatalf("expected neutral, got %q", got.Sentiment)
	}
}

func TestClassifyUrgency(t *testing.T) {
	if got := Classify("production is down, this is urgent"); got.Urgency != "high" {
		t.Fatalf("expected high, got %q", got.Urgency)
	}
	if got := Classify("would be nice to fix this today"); got.Urgency != "medium" {
		t.Fatalf("expected medium, got %q", got.Urgency)
	}
	if got := Classify("minor cosmetic glitch"); got.Urgency != "low" {
		t.Fatalf("expected low, got %q", got.Urgency)
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	got := Classify("URGENT: BILLING ERROR, THIS IS TERRIBLE")
	if got.Tag != "billing" || got.Sentiment != "negative" || got.Urgency != "high" {
		t.Fatalf("unexpected classification: %+v", got)
	}
}

func TestSuggestedMacrosFallsBackToGeneral(t *testing.T) {
	if got := SuggestedMacros("billing"); len(got) != 2 {
		t.Fatalf("expected 2 billing macros, got %d", len(got))
	}
	general := SuggestedMacros("nonsense")
	if len(general) != 1 {
		t.Fatalf("expected general fallback, got %d macros", len(general))
	}
}
