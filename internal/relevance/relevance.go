// Package relevance narrows a scanned corpus to the files an instruction is
// likely about. Matching is substring based and errs on the side of
// including too much.
package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
)

const minKeywordLen = 4

var stopWords = map[string]bool{
	"this":   true,
	"that":   true,
	"with":   true,
	"from":   true,
	"have":   true,
	"will":   true,
	"would":  true,
	"could":  true,
	"should": true,
}

// Keywords extracts the lower-cased search terms of an instruction. The
// result has no duplicates and keeps first-seen order.
func Keywords(instruction string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, word := range strings.Fields(strings.ToLower(instruction)) {
		if utf8.RuneCountInString(word) < minKeywordLen || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}

// Select returns the files whose relative path or content contains any
// keyword of the instruction, in corpus order. No keywords means no files.
func Select(files []models.FileRecord, instruction string) []models.FileRecord {
	keywords := Keywords(instruction)
	if len(keywords) == 0 {
		return nil
	}

	var out []models.FileRecord
	for _, f := range files {
		text := strings.ToLower(f.RelativePath + " " + f.Content)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
