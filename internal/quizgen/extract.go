package quizgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// fencedJSON matches a Markdown code fence tagged json whose closing fence
// starts a line, capturing its body. JSON strings hold no raw newlines, so
// backticks inside a string value never close the fence.
var fencedJSON = regexp.MustCompile("(?s)```[ \t]*(?i:json)[ \t]*\r?\n(.*?)\r?\n[ \t]*```")

// inlineFencedJSON matches a json fence closed on the body's own line.
var inlineFencedJSON = regexp.MustCompile("(?s)```[ \t]*(?i:json)\b[ \t]*(.*?)```")

// errNoCandidate is wrapped by MalformedOutputError when the text has
// neither a json fence nor a brace span.
var errNoCandidate = errors.New("no JSON payload found")

// Extractor recovers a QuizDraft from free-form backend text.
type Extractor struct {
	Request    GenerationRequest
	Validators []Validator
}

// NewExtractor builds an Extractor for req using the default validators.
func NewExtractor(req GenerationRequest) *Extractor {
	return &Extractor{Request: req, Validators: DefaultValidators()}
}

// Extract returns the quiz embedded in raw, or a *MalformedOutputError or
// *SchemaMismatchError carrying raw unchanged.
func Extract(raw string, optionCount int) (QuizDraft, error) {
	return NewExtractor(GenerationRequest{OptionCount: optionCount}).Extract(raw)
}

// Extract locates the payload (json fence first, else the span from the
// first '{' to the last '}'), parses it, checks it against the quiz schema
// and runs the validator chain.
func (x *Extractor) Extract(raw string) (QuizDraft, error) {
	candidate, ok := locatePayload(raw)
	if !ok {
		return QuizDraft{}, &MalformedOutputError{Raw: raw, Err: errNoCandidate}
	}

	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return QuizDraft{}, &MalformedOutputError{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := compiledSchema(x.optionCount())
	if err != nil {
		return QuizDraft{}, fmt.Errorf("quiz schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return QuizDraft{}, &SchemaMismatchError{Raw: raw, Err: err}
	}

	var draft QuizDraft
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	if err := dec.Decode(&draft); err != nil {
		return QuizDraft{}, &SchemaMismatchError{Raw: raw, Err: err}
	}

	for _, v := range x.Validators {
		if verr := v.Validate(draft, x.Request); verr != nil {
			return QuizDraft{}, &SchemaMismatchError{Raw: raw, Err: verr}
		}
	}

	return draft, nil
}

func (x *Extractor) optionCount() int {
	if x.Request.OptionCount <= 0 {
		return DefaultOptionCount
	}
	return min(x.Request.OptionCount, MaxOptionCount)
}

// locatePayload returns the JSON candidate within raw. A json fence wins
// over the brace span even when its body turns out to be invalid.
func locatePayload(raw string) (string, bool) {
	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		m = inlineFencedJSON.FindStringSubmatch(raw)
	}
	if m != nil {
		body := strings.TrimSpace(m[1])
		return body, body != ""
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}
