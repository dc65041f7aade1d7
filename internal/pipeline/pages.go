package pipeline

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"sunquote/internal"
)

// EmailPages is the page-oriented view of one quote email: the body and
// every readable attachment flattened into numbered text pages.
type EmailPages struct {
	Pages           []internal.Page
	Subject         string
	Text            string
	HTML            string
	AttachmentNames []string
}

func PagesFromEmailRaw(raw []byte) (EmailPages, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return EmailPages{}, err
	}

	out := EmailPages{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
		HTML:    env.HTML,
	}

	pageNo := 0
	addPage := func(text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		pageNo++
		out.Pages = append(out.Pages, internal.Page{Page: pageNo, Text: text})
	}

	if env.Text != "" {
		addPage(env.Text)
	}
	if env.HTML != "" {
		addPage(flattenHTML(env.HTML))
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		out.AttachmentNames = append(out.AttachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".pdf"):
			texts, err := pdfPageTexts(att.Content)
			if err != nil {
				continue
			}
			for _, text := range texts {
				addPage(text)
			}
		case strings.HasSuffix(lower, ".txt"):
			// OCR sidecars for scanned quotes arrive as plain-text twins
			// of the PDF.
			addPage(string(att.Content))
		case strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm"):
			addPage(flattenHTML(string(att.Content)))
		}
	}

	return out, nil
}

// flattenHTML turns proposal HTML into extraction-ready text: table rows
// become pipe-joined lines so the context classifier sees them as
// tables, remaining markup becomes plain lines.
func flattenHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	lines := []string{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeSpaces(cell.Text()))
		})
		joined := strings.TrimSpace(strings.Join(cells, " | "))
		if strings.Trim(joined, " |") != "" {
			lines = append(lines, joined)
		}
	})

	doc.Find("table,style,script").Remove()
	for _, line := range splitLines(doc.Text()) {
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func pdfPageTexts(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out = append(out, text)
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var reSpaces = regexp.MustCompile(`\s+`)

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}
