// Package notify builds the reviewer notifications sent for claims that need manual adjudication.
package notify

import (
	"fmt"
	"html"
	"strings"

	"claimflow/internal/domain"
	"claimflow/internal/validator"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// ClaimURL returns the dashboard link for a claim, or "" when no dashboard is configured.
func ClaimURL(dashboardURL string, claim *domain.ProcessedClaim) string {
	if dashboardURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/claims/%s", strings.TrimRight(dashboardURL, "/"), claim.ID)
}

// PendingReview renders the notification for a claim routed to manual review.
func PendingReview(claim *domain.ProcessedClaim, dashboardURL string) Message {
	link := ClaimURL(dashboardURL, claim)
	subject := fmt.Sprintf("Claim %s needs manual review", shortID(claim))

	var text strings.Builder
	fmt.Fprintf(&text, "Claim %s was routed to manual review.\n\n", claim.ID)
	fmt.Fprintf(&text, "Reason: %s\n", claim.Decision.Reason)
	fmt.Fprintf(&text, "Amount under review: %.2f\n", claim.Decision.AmountRejected)
	fmt.Fprintf(&text, "Documents: %d received, %d processed\n",
		claim.Metadata.DocumentsReceived, claim.Metadata.DocumentsProcessed)
	for _, d := range claim.Validation.Discrepancies {
		fmt.Fprintf(&text, "  - %s\n", discrepancyLine(d))
	}
	if link != "" {
		fmt.Fprintf(&text, "\nOpen the claim: %s\n", link)
	}

	var body strings.Builder
	body.WriteString(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
`)
	fmt.Fprintf(&body, "  <h2 style=\"color: #333;\">Claim %s needs manual review</h2>\n", html.EscapeString(shortID(claim)))
	fmt.Fprintf(&body, "  <p><strong>Reason:</strong> %s</p>\n", html.EscapeString(claim.Decision.Reason))
	fmt.Fprintf(&body, "  <p><strong>Amount under review:</strong> %.2f</p>\n", claim.Decision.AmountRejected)
	if len(claim.Validation.Discrepancies) > 0 {
		body.WriteString("  <ul>\n")
		for _, d := range claim.Validation.Discrepancies {
			fmt.Fprintf(&body, "    <li>%s</li>\n", html.EscapeString(discrepancyLine(d)))
		}
		body.WriteString("  </ul>\n")
	}
	if link != "" {
		fmt.Fprintf(&body, `  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Claim</a>
  </p>
`, html.EscapeString(link))
	}
	body.WriteString(`  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Claimflow - Claim Adjudication</p>
</body>
</html>`)

	return Message{Subject: subject, Text: text.String(), HTML: body.String()}
}

// discrepancyLine appends the conflicting values to the message.
func discrepancyLine(d domain.Discrepancy) string {
	values := validator.DistinctValues(d)
	if len(values) == 0 {
		return d.Message
	}
	return d.Message + ": " + strings.Join(values, " vs ")
}

func shortID(claim *domain.ProcessedClaim) string {
	return claim.ID.String()[:8]
}
