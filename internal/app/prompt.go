package app

import (
	"fmt"
	"strings"

	"docuchat/internal/model"
)

// retrievedFragment pairs a fragment's text with the display name of the
// document it came from, for provenance tagging in the prompt.
type retrievedFragment struct {
	Text     string
	FileName string
}

const promptInstructions = `You are an assistant that answers questions about the user's uploaded documents.
Follow these rules:
1. Prefer the [Document Content] section for factual and numeric claims.
2. Use the [Previous Conversation] section only to resolve the user's intent and pronouns.
3. If no relevant document content exists, say so explicitly instead of inventing an answer.
4. When citing a source, use the exact file name from its [source: ...] tag.`

// renderPrompt builds the fixed three-section prompt: previous
// conversation, document content, question. Empty history and empty
// retrieval render as empty sections, never as errors.
func renderPrompt(history []model.ConversationTurn, fragments []retrievedFragment, question string) string {
	var historyBlock strings.Builder
	for i, turn := range history {
		if i > 0 {
			historyBlock.WriteByte('\n')
		}
		historyBlock.WriteString(turn.Role)
		historyBlock.WriteString(": ")
		historyBlock.WriteString(turn.Text)
	}

	var contextBlock strings.Builder
	for i, f := range fragments {
		if i > 0 {
			contextBlock.WriteString("\n\n")
		}
		contextBlock.WriteString(fmt.Sprintf("[source: %s]\n%s", f.FileName, f.Text))
	}

	var b strings.Builder
	b.WriteString(promptInstructions)
	b.WriteString("\n\n[Previous Conversation]\n")
	b.WriteString(historyBlock.String())
	b.WriteString("\n\n[Document Content]\n")
	b.WriteString(contextBlock.String())
	b.WriteString("\n\n[Question]\n")
	b.WriteString(question)
	return b.String()
}
