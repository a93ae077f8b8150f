package service

import (
	"strings"
)

// summaryTemplate has a single {context} substitution point.
const summaryTemplate = `You are an assistant that summarizes content from a link. Use only the context below.
Start your answer with a short title for the content on the first line, then summarize it.
Your summary must not exceed ten sentences.
If you cannot determine what the content is about, say that you don't know instead of making up a summary.

Context:
{context}`

// ComposePrompt substitutes the context pieces, separated by blank lines, into
// the summary template.
func ComposePrompt(contexts []string) string {
	pieces := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if c = strings.TrimSpace(c); c != "" {
			pieces = append(pieces, c)
		}
	}
	return strings.Replace(summaryTemplate, "{context}", strings.Join(pieces, "\n\n"), 1)
}
