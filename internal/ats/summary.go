package ats

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// summaryLimit bounds the stored posting summary. Full descriptions live on
// the ATS; the pipeline only needs enough for review and oracle context.
const summaryLimit = 2000

var summaryConverter = md.NewConverter("", true, nil)

// htmlToSummary converts a posting's HTML description to markdown and trims
// it to the summary limit on a word boundary
func htmlToSummary(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	converted, err := summaryConverter.ConvertString(html)
	if err != nil {
		return ""
	}
	converted = strings.TrimSpace(converted)
	if len(converted) <= summaryLimit {
		return converted
	}
	cut := converted[:summaryLimit]
	if idx := strings.LastIndexAny(cut, " \n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
