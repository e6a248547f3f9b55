package chat

import (
	"fmt"
	"strings"
)

type catalogService struct {
	name        string
	keywords    []string
	description string
}

var serviceCatalog = []catalogService{
	{
		name:        "CRM + Data Setup",
		keywords:    []string{"crm", "hubspot", "salesforce", "pipedrive", "data", "pipeline", "sync"},
		description: "CRM implementation + data model, pipelines, integrations, dashboards.",
	},
	{
		name:        "CRM Integrations",
		keywords:    []string{"integration", "api", "webhook", "zapier", "whatsapp"},
		description: "Connect CRM with WhatsApp, email, forms, billing, and internal tools.",
	},
	{
		name:        "Automation & Workflows",
		keywords:    []string{"automation", "workflow", "follow up", "sequence", "nurture"},
		description: "Automated lead routing, follow-ups, ticket triage, and reminders.",
	},
	{
		name:        "Support / Troubleshooting",
		keywords:    []string{"error", "bug", "issue", "not working", "problem", "upload"},
		description: "Diagnose issues, fix bugs, and improve reliability & monitoring.",
	},
}

const pricingNote = "Pricing depends on scope (CRM, integrations, data volume, timelines). We can give a quote after 2-3 details."

// DetectTopic maps a message onto a catalog service name by keyword, or
// "General" when nothing matches.
func DetectTopic(message string) string {
	text := strings.ToLower(message)
	for _, svc := range serviceCatalog {
		if containsAny(text, svc.keywords) {
			return svc.name
		}
	}
	return "General"
}

// BuildReply produces the deterministic fallback answer used when no text
// generation backend is configured or the call fails.
func BuildReply(message string) string {
	text := strings.ToLower(message)
	topic := DetectTopic(message)

	if strings.Contains(text, "service") {
		var b strings.Builder
		b.WriteString("Here's what we can help with:\n\n")
		for _, svc := range serviceCatalog {
			fmt.Fprintf(&b, "- **%s** — %s\n", svc.name, svc.description)
		}
		b.WriteString("\nIf you tell me which CRM you use and what you're trying to achieve, I'll suggest the best next step.")
		return b.String()
	}

	if containsAny(text, []string{"price", "pricing", "cost", "quote"}) {
		return pricingNote + "\n\n" +
			"Quick questions:\n" +
			"1) Which CRM (HubSpot/Salesforce/etc.)?\n" +
			"2) What needs integrating (WhatsApp, forms, website, billing)?\n" +
			"3) Rough timeline (this week / this month)?"
	}

	for _, svc := range serviceCatalog {
		if svc.name == topic {
			return fmt.Sprintf(
				"Got it — sounds like **%s**.\n\n%s\n\nTell me your CRM + what tools you want connected, and I'll outline a clean approach.",
				svc.name, svc.description,
			)
		}
	}

	return "Got it. Tell me what you're trying to do (CRM, automation, integrations, or support) and I'll guide you."
}
