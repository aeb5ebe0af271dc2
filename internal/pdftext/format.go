package pdftext

import "strings"

// SplitPages divides raw pdftotext output into per-page texts. The tool emits
// a form feed after each page.
func SplitPages(raw string) []string {
	parts := strings.Split(raw, "\f")
	pages := make([]string, 0, len(parts))
	for _, part := range parts {
		page := FormatPageText(part)
		if page == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FormatPageText collapses embedded line breaks to single spaces and trims
// leading and trailing whitespace, so identical bytes always yield identical
// text regardless of layout.
func FormatPageText(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}

// JoinPages concatenates normalized page texts in document order.
func JoinPages(pages []string) string {
	return strings.Join(pages, " ")
}
