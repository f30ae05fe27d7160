package rag

import (
	"fmt"
	"strings"
)

const contextualizeInstruction = `Rewrite the final user question as a single standalone search query. Resolve pronouns and implicit references using the conversation, but do NOT add information that is not present in the conversation. If the question already stands alone, return it unchanged. Respond with ONLY the rewritten query.`

func buildContextualizePrompt(question string, history []Turn) string {
	var sb strings.Builder
	sb.WriteString(contextualizeInstruction)
	sb.WriteString("\n\nConversation:\n")
	writeHistory(&sb, history)
	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}

const answerInstruction = `You are answering questions about a document. Answer using ONLY the context excerpts below. Cite the page number when it supports your answer. If the context does not contain the answer, say so plainly instead of guessing.`

func buildAnswerPrompt(question string, history []Turn, chunks []RetrievedChunk) string {
	var sb strings.Builder
	sb.WriteString(answerInstruction)

	if len(history) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		writeHistory(&sb, history)
	}

	sb.WriteString("\n\nContext excerpts:\n")
	for _, c := range chunks {
		fmt.Fprintf(&sb, "\n[Page %d]\n%s\n", c.PageNumber, c.Text)
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}

func writeHistory(sb *strings.Builder, history []Turn) {
	for _, t := range history {
		role := t.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(sb, "%s: %s\n", role, t.Text)
	}
}
