package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ExtractJSON returns the substring of reply from the first '{' to the last '}'
// inclusive. It reports false when either brace is missing or the last '}'
// comes before the first '{'.
func ExtractJSON(reply string) (string, bool) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}

// decodePayload extracts the JSON object from reply, checks it against schema
// and decodes it into T.
func decodePayload[T any](reply string, schema *gojsonschema.Schema) outcome[T] {
	candidate, found := ExtractJSON(reply)
	if !found {
		return fail[T](reasonNoJSONObject, fmt.Errorf("no JSON object in reply (%d bytes)", len(reply)))
	}
	if !json.Valid([]byte(candidate)) {
		return fail[T](reasonInvalidJSON, fmt.Errorf("reply object is not valid JSON"))
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return fail[T](reasonInvalidJSON, fmt.Errorf("validate payload: %w", err))
	}
	if !result.Valid() {
		return fail[T](reasonShape, fmt.Errorf("payload shape: %s", describeErrors(result.Errors())))
	}

	var v T
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return fail[T](reasonInvalidJSON, fmt.Errorf("decode payload: %w", err))
	}
	return succeed(v)
}

func describeErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
