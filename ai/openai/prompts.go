package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/secrag/ai"
)

// passageExcerptLimit caps how much of each passage goes into the answer
// prompt. Retrieval already ranked the passages; the opening of a chunk
// carries most of its signal.
const passageExcerptLimit = 500

const contextSystemPrompt = `You are an assistant that situates excerpts of SEC filings within
their source document. You write one short paragraph of plain prose and nothing else.`

const contextPromptTemplate = `<document>
Company: %s%s
Form type: %s
Filing date: %s
Fiscal year: %d
</document>

Here is the chunk we want to situate within the whole document:
<chunk>
%s
</chunk>

Please give a short succinct context (50-100 tokens) to situate this chunk within
the overall document for the purposes of improving search retrieval of the chunk.
Mention the company, the form type, and the period when relevant.
Answer only with the succinct context and nothing else.`

// buildContextPrompt renders the situating prompt for one chunk.
func buildContextPrompt(filing ai.FilingContext, chunkText string) string {
	ticker := ""
	if filing.Ticker != "" {
		ticker = fmt.Sprintf(" (%s)", filing.Ticker)
	}
	return fmt.Sprintf(contextPromptTemplate,
		filing.CompanyName, ticker,
		filing.FormType,
		filing.FilingDate,
		filing.FiscalYear,
		chunkText)
}

const answerSystemPrompt = `You are a financial analyst assistant that answers questions about
SEC filings. Base your answer strictly on the provided excerpts. Cite the filings you draw on
by company, form type, and filing date. If the excerpts do not contain enough information to
answer the question, say so plainly rather than speculating.`

const answerPromptTemplate = `Question: %s

Relevant excerpts from SEC filings:

%s

Answer the question using only the excerpts above. Cite your sources.`

// buildAnswerPrompt renders the question plus its evidence passages.
func buildAnswerPrompt(question string, passages []ai.Passage) string {
	var sb strings.Builder
	for i, p := range passages {
		text := p.Text
		if len(text) > passageExcerptLimit {
			text = text[:passageExcerptLimit] + "..."
		}
		fmt.Fprintf(&sb, "[%d] %s (relevance %.2f)\n%s\n\n", i+1, p.Source, p.Score, text)
	}
	return fmt.Sprintf(answerPromptTemplate, question, strings.TrimSpace(sb.String()))
}
