package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing record; its message is the API error text.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Collection describes one array of the document and how to address its records.
type Collection[T any] struct {
	Name   string // JSON key and route segment
	Entity string // singular, capitalized, used in messages

	records func(*Document) *[]T
	id      func(*T) classroom.ID
	setID   func(*T, classroom.ID)
	prepare func(*T)
}

var Subjects = Collection[classroom.Subject]{
	Name:    "subjects",
	Entity:  "Subject",
	records: func(d *Document) *[]classroom.Subject { return &d.Subjects },
	id:      func(r *classroom.Subject) classroom.ID { return r.ID },
	setID:   func(r *classroom.Subject, id classroom.ID) { r.ID = id },
}

var Lectures = Collection[classroom.Lecture]{
	Name:    "lectures",
	Entity:  "Lecture",
	records: func(d *Document) *[]classroom.Lecture { return &d.Lectures },
	id:      func(r *classroom.Lecture) classroom.ID { return r.ID },
	setID:   func(r *classroom.Lecture, id classroom.ID) { r.ID = id },
}

var Tests = Collection[classroom.Test]{
	Name:    "tests",
	Entity:  "Test",
	records: func(d *Document) *[]classroom.Test { return &d.Tests },
	id:      func(r *classroom.Test) classroom.ID { return r.ID },
	setID:   func(r *classroom.Test, id classroom.ID) { r.ID = id },
	prepare: func(r *classroom.Test) {
		if r.Questions == nil {
			r.Questions = []classroom.Question{}
		}
		if r.SchemaVersion == 0 {
			r.SchemaVersion = classroom.TestSchemaVersion
		}
	},
}

var Teachers = Collection[classroom.Teacher]{
	Name:    "teachers",
	Entity:  "Teacher",
	records: func(d *Document) *[]classroom.Teacher { return &d.Teachers },
	id:      func(r *classroom.Teacher) classroom.ID { return r.ID },
	setID:   func(r *classroom.Teacher, id classroom.ID) { r.ID = id },
	prepare: func(r *classroom.Teacher) {
		if r.SelectedSubjects == nil {
			r.SelectedSubjects = []classroom.ID{}
		}
	},
}

var Schedules = Collection[classroom.Schedule]{
	Name:    "schedules",
	Entity:  "Schedule",
	records: func(d *Document) *[]classroom.Schedule { return &d.Schedules },
	id:      func(r *classroom.Schedule) classroom.ID { return r.ID },
	setID:   func(r *classroom.Schedule, id classroom.ID) { r.ID = id },
	prepare: func(r *classroom.Schedule) {
		if r.Days == nil {
			r.Days = []classroom.Day{}
		}
	},
}

// NotFound builds the error for a missing record of this collection.
func (c Collection[T]) NotFound() error {
	return &NotFoundError{Entity: c.Entity}
}

// ID returns the identifier of rec.
func (c Collection[T]) ID(rec T) classroom.ID {
	return c.id(&rec)
}

// All returns the collection's records inside a View/Update callback.
func (c Collection[T]) All(doc *Document) []T {
	return *c.records(doc)
}

// Find looks a record up inside a View/Update callback.
func (c Collection[T]) Find(doc *Document, id classroom.ID) (T, bool) {
	for _, r := range *c.records(doc) {
		if c.id(&r) == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Insert appends rec with a freshly minted id inside an Update callback.
func (c Collection[T]) Insert(doc *Document, id classroom.ID, rec T) T {
	c.setID(&rec, id)
	if c.prepare != nil {
		c.prepare(&rec)
	}
	records := c.records(doc)
	*records = append(*records, rec)
	return rec
}

// List returns every record of the collection.
func (c Collection[T]) List(ctx context.Context, s *Store) ([]T, error) {
	var out []T
	err := s.View(ctx, func(doc *Document) error {
		out = append([]T{}, c.All(doc)...)
		return nil
	})
	return out, err
}

// Get returns a single record or a NotFoundError.
func (c Collection[T]) Get(ctx context.Context, s *Store, id classroom.ID) (T, error) {
	var out T
	err := s.View(ctx, func(doc *Document) error {
		rec, ok := c.Find(doc, id)
		if !ok {
			return c.NotFound()
		}
		out = rec
		return nil
	})
	return out, err
}

// Create stores rec under a newly minted id and returns it.
func (c Collection[T]) Create(ctx context.Context, s *Store, rec T) (T, error) {
	var out T
	err := s.Update(ctx, func(doc *Document) error {
		out = c.Insert(doc, s.NextID(), rec)
		return nil
	})
	return out, err
}

// Merge overlays the top-level fields of patch onto the stored record. The
// record keeps its id whatever the patch says.
func (c Collection[T]) Merge(ctx context.Context, s *Store, id classroom.ID, patch map[string]json.RawMessage) (T, error) {
	var out T
	err := s.Update(ctx, func(doc *Document) error {
		records := *c.records(doc)
		for i := range records {
			if c.id(&records[i]) != id {
				continue
			}
			merged, err := mergeRecord(records[i], patch)
			if err != nil {
				return err
			}
			c.setID(&merged, id)
			if c.prepare != nil {
				c.prepare(&merged)
			}
			records[i] = merged
			out = merged
			return nil
		}
		return c.NotFound()
	})
	return out, err
}

// Delete removes the record if present. Deleting a missing id is not an error.
func (c Collection[T]) Delete(ctx context.Context, s *Store, id classroom.ID) error {
	return s.Update(ctx, func(doc *Document) error {
		records := c.records(doc)
		kept := (*records)[:0]
		for _, r := range *records {
			if c.id(&r) != id {
				kept = append(kept, r)
			}
		}
		*records = kept
		return nil
	})
}

// InvalidPatchError reports a merge body that does not fit the record type.
type InvalidPatchError struct {
	Err error
}

func (e *InvalidPatchError) Error() string {
	return fmt.Sprintf("invalid patch: %v", e.Err)
}

func (e *InvalidPatchError) Unwrap() error {
	return e.Err
}

func mergeRecord[T any](current T, patch map[string]json.RawMessage) (T, error) {
	var zero T

	data, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("encode record: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("decode record: %w", err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}

	data, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encode merged record: %w", err)
	}
	var merged T
	if err := json.Unmarshal(data, &merged); err != nil {
		return zero, &InvalidPatchError{Err: err}
	}
	return merged, nil
}
