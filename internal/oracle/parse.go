package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ParseError means the reply held no decodable plan object. Raw keeps the
// reply as received.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse oracle response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n?(.*?)```")

var errNotObject = errors.New("reply is not a JSON object")

// wirePlan is the JSON shape of a reply. Some models answer with
// "modifications" instead of "edits"; both are accepted.
type wirePlan struct {
	Plan          string `json:"plan"`
	Edits         []Edit `json:"edits"`
	Modifications []Edit `json:"modifications"`
}

// ParseReply decodes the reply as a plan object. When the reply is not a bare
// object it falls back to the first fenced block, then to the span between the
// first '{' and the last '}'. Missing plan or edits decode as empty values.
func ParseReply(raw string) (*Plan, error) {
	plan, firstErr := decodeObject(raw)
	if firstErr == nil {
		return plan, nil
	}
	for _, candidate := range embeddedCandidates(raw) {
		if plan, err := decodeObject(candidate); err == nil {
			return plan, nil
		}
	}
	return nil, &ParseError{Raw: raw, Err: firstErr}
}

func embeddedCandidates(raw string) []string {
	var out []string
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		out = append(out, m[1])
	}
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		out = append(out, raw[start:end+1])
	}
	return out
}

func decodeObject(text string) (*Plan, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, errNotObject
	}
	var w wirePlan
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, err
	}
	edits := w.Edits
	if edits == nil {
		edits = w.Modifications
	}
	if edits == nil {
		edits = []Edit{}
	}
	return &Plan{Plan: w.Plan, Edits: edits}, nil
}
