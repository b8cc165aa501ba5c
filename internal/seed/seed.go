// Package seed populates an empty store from a YAML file at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

// errAlreadySeeded aborts the store update without saving.
var errAlreadySeeded = errors.New("store already has data")

// Load reads and decodes a seed file. Unknown keys are rejected.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes seed YAML. An empty document yields an empty File.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// Apply inserts the seed records when the store has no subjects, lectures and
// teachers. It reports whether anything was written.
func Apply(ctx context.Context, s *store.Store, f *File) (bool, error) {
	if f == nil || f.Empty() {
		return false, nil
	}

	err := s.Update(ctx, func(doc *store.Document) error {
		if len(doc.Subjects) > 0 || len(doc.Lectures) > 0 || len(doc.Teachers) > 0 {
			return errAlreadySeeded
		}
		return insert(doc, s.IDs(), f)
	})
	if errors.Is(err, errAlreadySeeded) {
		slog.Info("seed skipped, store not empty")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("apply seed: %w", err)
	}

	slog.Info("seed applied",
		"subjects", len(f.Subjects),
		"lectures", len(f.Lectures),
		"teachers", len(f.Teachers),
	)
	return true, nil
}

func insert(doc *store.Document, ids *store.IDMinter, f *File) error {
	subjectIDs := make(map[string]classroom.ID, len(f.Subjects))
	for _, sub := range f.Subjects {
		key := nameKey(sub.Name)
		if key == "" {
			return errors.New("subject name required")
		}
		if _, dup := subjectIDs[key]; dup {
			return fmt.Errorf("duplicate subject %q", sub.Name)
		}
		rec := store.Subjects.Insert(doc, ids.Next(), classroom.Subject{
			Name:  sub.Name,
			Icon:  sub.Icon,
			Color: sub.Color,
		})
		subjectIDs[key] = rec.ID
	}

	resolve := func(name string) (classroom.ID, error) {
		id, ok := subjectIDs[nameKey(name)]
		if !ok {
			return 0, fmt.Errorf("unknown subject %q", name)
		}
		return id, nil
	}

	for _, lec := range f.Lectures {
		subjectID, err := resolve(lec.Subject)
		if err != nil {
			return fmt.Errorf("lecture %q: %w", lec.Name, err)
		}
		store.Lectures.Insert(doc, ids.Next(), classroom.Lecture{
			Name:      lec.Name,
			Content:   lec.Content,
			Duration:  lec.Duration,
			SubjectID: subjectID,
		})
	}

	for _, t := range f.Teachers {
		selected := make([]classroom.ID, 0, len(t.Subjects))
		for _, name := range t.Subjects {
			id, err := resolve(name)
			if err != nil {
				return fmt.Errorf("teacher %q: %w", t.Name, err)
			}
			selected = append(selected, id)
		}
		store.Teachers.Insert(doc, ids.Next(), classroom.Teacher{
			Name:             t.Name,
			SelectedSubjects: selected,
			HoursPerWeek:     t.HoursPerWeek,
			LessonDuration:   t.LessonDuration,
			MinBreak:         t.MinBreak,
			WorkStart:        t.WorkStart,
			WorkEnd:          t.WorkEnd,
		})
	}
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
