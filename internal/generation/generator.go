// Package generation turns free-text completions into classroom records.
//
// Every public method is fail-closed: transport errors, exhausted budgets,
// replies without a JSON object and malformed payloads all degrade to a typed
// default (an empty schedule, a placeholder lecture, an empty question list).
// Failures are logged with their reason and never returned.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/p-n-ai/pai-classroom/internal/ai"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

const (
	// AnonymousScope is charged for requests without a known teacher.
	AnonymousScope = "anonymous"

	defaultQuestionCount = 5
	defaultDifficulty    = "medium"

	scheduleMaxTokens = 2048
	lectureMaxTokens  = 4096
	testMaxTokens     = 2048
)

// errBudgetExhausted marks a scope that used up its tokens.
var errBudgetExhausted = errors.New("token budget exhausted")

// IDSource mints record identifiers.
type IDSource interface {
	Next() classroom.ID
}

// Config holds dependencies for the generator.
type Config struct {
	Completer ai.Completer
	Budget    ai.BudgetChecker // optional
	IDs       IDSource         // default: a fresh time-based minter
	Now       func() time.Time // default: time.Now
	Timeout   time.Duration    // per completion call; 0 means none
}

// Generator builds prompts, calls the completion service and normalizes replies.
type Generator struct {
	completer ai.Completer
	budget    ai.BudgetChecker
	ids       IDSource
	now       func() time.Time
	timeout   time.Duration
}

// New creates a generator.
func New(cfg Config) *Generator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ids := cfg.IDs
	if ids == nil {
		ids = store.NewIDMinter(now)
	}
	return &Generator{
		completer: cfg.Completer,
		budget:    cfg.Budget,
		ids:       ids,
		now:       now,
		timeout:   cfg.Timeout,
	}
}

// TestOptions tunes test generation. Zero values take the defaults.
type TestOptions struct {
	QuestionCount int
	Difficulty    string
	Types         []string
}

func (o TestOptions) withDefaults() TestOptions {
	if o.QuestionCount <= 0 {
		o.QuestionCount = defaultQuestionCount
	}
	if strings.TrimSpace(o.Difficulty) == "" {
		o.Difficulty = defaultDifficulty
	}
	if len(o.Types) == 0 {
		o.Types = []string{classroom.QuestionTypeMultipleChoice}
	}
	return o
}

// LecturePlaceholder is the content stored when lecture generation fails.
func LecturePlaceholder(title string) string {
	return fmt.Sprintf("Lecture on %q", title)
}

// TestName is the name given to a generated test.
func TestName(lecture classroom.Lecture) string {
	return fmt.Sprintf("Test for lecture %q", lecture.Name)
}

type schedulePayload struct {
	Days *[]classroom.Day `json:"days"`
}

type testPayload struct {
	Questions *[]classroom.Question `json:"questions"`
}

// GenerateSchedule drafts a Monday to Friday schedule for teacher. The result
// always carries a new id, today's date as week_start and the teacher's id.
func (g *Generator) GenerateSchedule(ctx context.Context, teacher classroom.Teacher, subjects []classroom.Subject) classroom.Schedule {
	schedule := classroom.Schedule{
		ID:        g.ids.Next(),
		TeacherID: teacher.ID,
		WeekStart: g.now().UTC().Format(time.DateOnly),
		Days:      []classroom.Day{},
	}

	scope := ScopeFrom(ctx)
	if scope == "" && teacher.ID != 0 {
		scope = teacher.ID.String()
	}
	if scope == "" {
		scope = AnonymousScope
	}

	res := g.scheduleDays(ctx, scope, teacher, subjects)
	if !res.ok() {
		logFailure(ai.TaskSchedule, res.reason, res.err, "teacher_id", teacher.ID)
		return schedule
	}
	schedule.Days = res.value
	return schedule
}

func (g *Generator) scheduleDays(ctx context.Context, scope string, teacher classroom.Teacher, subjects []classroom.Subject) outcome[[]classroom.Day] {
	reply := g.complete(ctx, ai.TaskSchedule, scope, scheduleMaxTokens,
		scheduleSystemPrompt, buildSchedulePrompt(teacher, subjects))
	if !reply.ok() {
		return failed[[]classroom.Day](reply)
	}

	payload := decodePayload[schedulePayload](reply.value, scheduleSchema)
	if !payload.ok() {
		return failed[[]classroom.Day](payload)
	}
	return succeed(normalizeDays(payload.value.Days))
}

func normalizeDays(days *[]classroom.Day) []classroom.Day {
	if days == nil || *days == nil {
		return []classroom.Day{}
	}
	out := *days
	for i := range out {
		out[i].Day = classroom.NormalizeDay(out[i].Day)
		if out[i].Lessons == nil {
			out[i].Lessons = []classroom.Lesson{}
		}
	}
	return out
}

// GenerateLecture returns Markdown lecture text for title, or the placeholder
// when the service fails or answers with nothing.
func (g *Generator) GenerateLecture(ctx context.Context, title string, subject classroom.Subject) string {
	reply := g.complete(ctx, ai.TaskLecture, scopeOrAnonymous(ctx), lectureMaxTokens,
		lectureSystemPrompt, buildLecturePrompt(title, subject))
	if reply.ok() && strings.TrimSpace(reply.value) == "" {
		reply = fail[string](reasonEmptyReply, errors.New("completion returned no text"))
	}
	if !reply.ok() {
		logFailure(ai.TaskLecture, reply.reason, reply.err, "subject_id", subject.ID, "title", title)
		return LecturePlaceholder(title)
	}
	return reply.value
}

// GenerateTest returns questions for lecture. The list is never nil and is not
// trimmed to the requested count.
func (g *Generator) GenerateTest(ctx context.Context, lecture classroom.Lecture, opts TestOptions) []classroom.Question {
	res := g.testQuestions(ctx, lecture, opts.withDefaults())
	if !res.ok() {
		logFailure(ai.TaskTest, res.reason, res.err, "lecture_id", lecture.ID)
		return []classroom.Question{}
	}
	return res.value
}

func (g *Generator) testQuestions(ctx context.Context, lecture classroom.Lecture, opts TestOptions) outcome[[]classroom.Question] {
	reply := g.complete(ctx, ai.TaskTest, scopeOrAnonymous(ctx), testMaxTokens,
		testSystemPrompt, buildTestPrompt(lecture, opts))
	if !reply.ok() {
		return failed[[]classroom.Question](reply)
	}

	payload := decodePayload[testPayload](reply.value, testSchema)
	if !payload.ok() {
		return failed[[]classroom.Question](payload)
	}
	if payload.value.Questions == nil || *payload.value.Questions == nil {
		return succeed([]classroom.Question{})
	}

	questions := *payload.value.Questions
	for i := range questions {
		if questions[i].Type == "" {
			questions[i].Type = classroom.QuestionTypeMultipleChoice
		}
	}
	return succeed(questions)
}

// complete sends a system + user conversation and returns the reply text.
func (g *Generator) complete(ctx context.Context, task ai.TaskType, scope string, maxTokens int, system, user string) outcome[string] {
	if g.completer == nil {
		return fail[string](reasonNoProvider, ai.ErrNoProvider)
	}

	if g.budget != nil {
		ok, err := g.budget.Check(ctx, scope)
		if err != nil {
			return fail[string](reasonBudget, fmt.Errorf("check budget: %w", err))
		}
		if !ok {
			return fail[string](reasonBudget, fmt.Errorf("%w for %s", errBudgetExhausted, scope))
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: system},
			{Role: ai.RoleUser, Content: user},
		},
		MaxTokens: maxTokens,
		Task:      task,
	})
	if err != nil {
		if errors.Is(err, ai.ErrNoProvider) {
			return fail[string](reasonNoProvider, err)
		}
		return fail[string](reasonTransport, err)
	}

	if g.budget != nil {
		if err := g.budget.Record(ctx, scope, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record AI usage", "scope", scope, "tokens", resp.TotalTokens(), "error", err)
		}
	}
	return succeed(resp.Content)
}

func logFailure(task ai.TaskType, r reason, err error, attrs ...any) {
	args := append([]any{"task", task.String(), "reason", string(r), "error", err}, attrs...)
	slog.Warn("generation failed, using default", args...)
}
