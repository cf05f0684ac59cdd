package service

import (
	"fmt"
	"strings"

	"github.com/orbital-research/bioastra/internal/domain"
)

// BuildAnswerPrompt renders the generation prompt for one role. The prompt
// names the persona, enumerates the fixed section titles in order, and
// embeds the retrieved context verbatim.
func BuildAnswerPrompt(query string, result *RetrievalResult, profile domain.RoleProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.\n\n", profile.Persona)
	b.WriteString("Answer the question below using only the provided source passages. ")
	b.WriteString("Structure your answer as numbered sections with exactly these headings, in this order:\n")
	for i, title := range profile.SectionTitles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	b.WriteString("\nEach section should run roughly 180 to 350 words. ")
	b.WriteString("When a passage cites a figure or table id, mention it where relevant.\n\n")

	fmt.Fprintf(&b, "Question: %s\n\n", query)

	if result != nil && result.Context != "" {
		b.WriteString("Source passages:\n\n")
		b.WriteString(result.Context)
		b.WriteString("\n")
	} else {
		b.WriteString("No source passages were retrieved. Say so plainly and answer from general knowledge of the field, flagging the lack of direct evidence.\n")
	}

	return b.String()
}
