package classroom

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NoAnswer is stored when the correct option cannot be determined.
const NoAnswer = -1

// Question is a single test item. Answer is the zero-based index of the correct
// option.
type Question struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// UnmarshalJSON accepts the answer as an index, a numeric string or the text of
// the correct option, and always stores the index.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question string          `json:"question"`
		Type     string          `json:"type"`
		Options  []string        `json:"options"`
		Answer   json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	q.Question = raw.Question
	q.Type = raw.Type
	q.Options = raw.Options
	if q.Options == nil {
		q.Options = []string{}
	}
	q.Answer = ResolveAnswer(raw.Answer, q.Options)
	return nil
}

// ResolveAnswer maps a raw answer value onto an option index, or NoAnswer.
func ResolveAnswer(raw json.RawMessage, options []string) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NoAnswer
	}

	if raw[0] != '"' {
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return NoAnswer
		}
		return indexInRange(int(n), n, options)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return NoAnswer
	}
	text = strings.TrimSpace(text)

	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), text) {
			return i
		}
	}
	if n, err := strconv.Atoi(text); err == nil {
		return indexInRange(n, float64(n), options)
	}
	return NoAnswer
}

func indexInRange(i int, f float64, options []string) int {
	if float64(i) != f || i < 0 || i >= len(options) {
		return NoAnswer
	}
	return i
}
