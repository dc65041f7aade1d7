package pipeline

import "testing"

func TestDetectSolarQuotePositive(t *testing.T) {
	res := DetectSolarQuote(
		"Your Solar Quote",
		"Please find attached your 6.6kW solar proposal with 13.5kWh of battery storage.",
		"",
		nil,
		0.45,
	)
	if !res.IsQuote {
		t.Fatalf("expected quote, got score %.2f", res.Score)
	}
	if res.Reason != "rules_positive" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestDetectSolarQuoteMarketingNegative(t *testing.T) {
	res := DetectSolarQuote(
		"Spring savings on solar",
		"Go solar today and save on your power bill. Book a free consultation.",
		"",
		nil,
		0.45,
	)
	if res.IsQuote {
		t.Fatalf("marketing mail should not pass, got score %.2f", res.Score)
	}
	if res.Reason != "rules_negative" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestDetectSolarQuoteAttachmentAndTableBoost(t *testing.T) {
	res := DetectSolarQuote(
		"Proposal",
		"",
		"<table><tr><td>Panels</td></tr></table>",
		[]string{"quote.pdf"},
		0.45,
	)
	if !res.IsQuote {
		t.Fatalf("structured attachment should pass, got score %.2f", res.Score)
	}
}

func TestDetectSolarQuoteSingleSizeToken(t *testing.T) {
	res := DetectSolarQuote(
		"",
		"A 6.6kW system suits most homes.",
		"",
		nil,
		0.45,
	)
	if res.IsQuote {
		t.Fatalf("one size token without quote vocabulary should not pass, got score %.2f", res.Score)
	}
	if res.Score != 0.2 {
		t.Fatalf("score = %.2f, want 0.2", res.Score)
	}
}
