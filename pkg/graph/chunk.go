package graph

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/OFFIS-RIT/trellis/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"
)

// tableDelimRe matches markdown table delimiter rows such as |-----|-----|.
var tableDelimRe = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)+\|?\s*$`)

// chunkDocument cuts one document into chunks of at most maxTokens tokens.
// Sentences are never split across chunks; a sentence that exceeds the
// budget on its own becomes a chunk of its own. Start and End record the
// half-open sentence span each chunk covers.
func chunkDocument(doc common.Document, encoder string, maxTokens int) ([]*common.Chunk, error) {
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	sentences := splitIntoSentences(doc.Text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []*common.Chunk
	chunkStart := -1
	chunkEnd := -1

	flushChunk := func() error {
		if chunkStart < 0 || chunkEnd <= chunkStart {
			return nil
		}
		id, err := gonanoid.New()
		if err != nil {
			return err
		}

		chunks = append(chunks, &common.Chunk{
			ID:     id,
			FileID: doc.FileID,
			Path:   doc.Path,
			Page:   doc.Page,
			Start:  chunkStart,
			End:    chunkEnd,
			Text:   strings.TrimSpace(strings.Join(sentences[chunkStart:chunkEnd], " ")),
		})
		chunkStart = -1
		chunkEnd = -1
		return nil
	}

	for i := range sentences {
		if chunkStart < 0 {
			chunkStart = i
			chunkEnd = i + 1
			continue
		}

		testText := strings.Join(sentences[chunkStart:i+1], " ")
		if len(enc.Encode(testText, nil, nil)) <= maxTokens {
			chunkEnd = i + 1
			continue
		}

		if err := flushChunk(); err != nil {
			return nil, err
		}
		chunkStart = i
		chunkEnd = i + 1
	}

	if err := flushChunk(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// splitIntoSentences breaks text into sentences, keeping markdown tables
// intact as a single sentence so tabular rows are never torn apart by the
// token budget.
func splitIntoSentences(text string) []string {
	lines := strings.Split(text, "\n")

	var sentences []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	isTableRow := func(line string) bool {
		trimmed := strings.TrimSpace(line)
		return trimmed != "" && strings.Contains(trimmed, "|")
	}

	appendLine := func(line string) {
		for _, sentence := range splitLineIntoSentences(line) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			if endsSentence(sentence) {
				flush()
			}
		}
	}

	inTable := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inTable && isTableRow(line) && i+1 < len(lines) && tableDelimRe.MatchString(strings.TrimSpace(lines[i+1])) {
			flush()
			inTable = true
			current.WriteString(line)
			continue
		}

		// A lone pipe-separated line without a delimiter row is not a
		// table, keep it as its own sentence.
		if !inTable && isTableRow(line) {
			flush()
			sentences = append(sentences, trimmed)
			continue
		}

		if inTable {
			if trimmed != "" && isTableRow(line) {
				current.WriteString("\n")
				current.WriteString(line)
				continue
			}
			inTable = false
			flush()
			if trimmed != "" {
				appendLine(trimmed)
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}
		appendLine(trimmed)
	}

	flush()

	return sentences
}

// splitLineIntoSentences splits a single line on sentence-ending
// punctuation. Numbered listings such as "1. First item 2. Second item"
// stay together, and trailing punctuation runs with closing quotes or
// brackets are absorbed into the sentence they end.
func splitLineIntoSentences(line string) []string {
	isPunct := func(b byte) bool {
		return b == '.' || b == '!' || b == '?'
	}
	isClosing := func(b byte) bool {
		return b == '"' || b == '\'' || b == ')' || b == ']' || b == '}'
	}

	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])
		if !isPunct(line[i]) {
			continue
		}

		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && isPunct(line[j]) {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && isClosing(line[j]) {
			current.WriteByte(line[j])
			j++
		}

		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
