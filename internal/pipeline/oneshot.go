package pipeline

import (
	"fmt"
	"os"

	"sunquote/internal"
)

// PagesFromInput adapts ad-hoc inputs (a PDF on disk, a pasted body) to
// the page list the engine consumes, for one-shot runs outside the
// email flow.
func PagesFromInput(inputType string, input string) ([]internal.Page, error) {
	switch inputType {
	case "text":
		return []internal.Page{{Page: 1, Text: input}}, nil
	case "html":
		return []internal.Page{{Page: 1, Text: flattenHTML(input)}}, nil
	case "txt":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		return []internal.Page{{Page: 1, Text: string(blob)}}, nil
	case "pdf":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		texts, err := pdfPageTexts(blob)
		if err != nil {
			return nil, err
		}
		pages := make([]internal.Page, 0, len(texts))
		for i, text := range texts {
			pages = append(pages, internal.Page{Page: i + 1, Text: text})
		}
		return pages, nil
	case "eml":
		blob, err := os.ReadFile(input)
		if err != nil {
			return nil, err
		}
		doc, err := PagesFromEmailRaw(blob)
		if err != nil {
			return nil, err
		}
		return doc.Pages, nil
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
