package pipeline

import (
	"strings"
	"testing"
)

func TestPagesFromEmailRawPlainText(t *testing.T) {
	raw := strings.Join([]string{
		"From: quotes@sunnysolar.com.au",
		"To: customer@example.com",
		"Subject: Your Solar Quote",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Proposal for John Citizen",
		"6.6kW of solar power",
	}, "\r\n")

	doc, err := PagesFromEmailRaw([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Subject != "Your Solar Quote" {
		t.Fatalf("subject = %q", doc.Subject)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Page != 1 {
		t.Fatalf("page number = %d, want 1", doc.Pages[0].Page)
	}
	if !strings.Contains(doc.Pages[0].Text, "6.6kW of solar power") {
		t.Fatalf("body missing from page text: %q", doc.Pages[0].Text)
	}
}

func TestFlattenHTMLTableRowsBecomePipeLines(t *testing.T) {
	html := `<html><body>
<p>Thanks for choosing Sunny Solar.</p>
<table>
<tr><th>Item</th><th>Detail</th></tr>
<tr><td>Panels</td><td>15 x JKM440N-54HL4R-BDB</td></tr>
</table>
</body></html>`

	text := flattenHTML(html)
	if !strings.Contains(text, "Panels | 15 x JKM440N-54HL4R-BDB") {
		t.Fatalf("table row not pipe-joined:\n%s", text)
	}
	if !strings.Contains(text, "Thanks for choosing Sunny Solar.") {
		t.Fatalf("paragraph text lost:\n%s", text)
	}
	if strings.Count(text, "JKM440N-54HL4R-BDB") != 1 {
		t.Fatalf("table content duplicated:\n%s", text)
	}
}

func TestFlattenHTMLDropsStyleAndScript(t *testing.T) {
	html := `<html><head><style>body { color: red; }</style></head>
<body><script>alert(1)</script><p>Inverter details inside.</p></body></html>`

	text := flattenHTML(html)
	if strings.Contains(text, "color: red") || strings.Contains(text, "alert(1)") {
		t.Fatalf("markup leaked into text:\n%s", text)
	}
	if !strings.Contains(text, "Inverter details inside.") {
		t.Fatalf("body text lost:\n%s", text)
	}
}
