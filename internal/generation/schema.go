package generation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// The schemas only pin the envelope. Field-level types are enforced by decoding.
const (
	scheduleSchemaJSON = `{
  "type": "object",
  "properties": {
    "days": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "day": {"type": "string"},
          "lessons": {"type": ["array", "null"], "items": {"type": "object"}}
        }
      }
    }
  }
}`

	testSchemaJSON = `{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string"},
          "options": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    }
  }
}`
)

var (
	scheduleSchema = mustSchema("schedule", scheduleSchemaJSON)
	testSchema     = mustSchema("test", testSchemaJSON)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return s
}
