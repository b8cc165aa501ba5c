package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

// Document is the whole persisted state: five collections in one JSON object.
type Document struct {
	Subjects  []classroom.Subject  `json:"subjects"`
	Lectures  []classroom.Lecture  `json:"lectures"`
	Tests     []classroom.Test     `json:"tests"`
	Teachers  []classroom.Teacher  `json:"teachers"`
	Schedules []classroom.Schedule `json:"schedules"`
}

// NewDocument returns a document with all collections empty.
func NewDocument() *Document {
	d := &Document{}
	d.normalize()
	return d
}

// IsEmpty reports whether no records exist in any collection.
func (d *Document) IsEmpty() bool {
	return len(d.Subjects) == 0 &&
		len(d.Lectures) == 0 &&
		len(d.Tests) == 0 &&
		len(d.Teachers) == 0 &&
		len(d.Schedules) == 0
}

// normalize replaces nil collections so they encode as [] instead of null.
func (d *Document) normalize() {
	if d.Subjects == nil {
		d.Subjects = []classroom.Subject{}
	}
	if d.Lectures == nil {
		d.Lectures = []classroom.Lecture{}
	}
	if d.Tests == nil {
		d.Tests = []classroom.Test{}
	}
	if d.Teachers == nil {
		d.Teachers = []classroom.Teacher{}
	}
	if d.Schedules == nil {
		d.Schedules = []classroom.Schedule{}
	}
}

// DecodeDocument parses persisted bytes. Empty input yields an empty document.
func DecodeDocument(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewDocument(), nil
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	d.normalize()
	return &d, nil
}

// EncodeDocument renders the document the way it is written to disk.
func EncodeDocument(d *Document) ([]byte, error) {
	d.normalize()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
