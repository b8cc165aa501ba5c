package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-classroom/internal/activity"
	"github.com/p-n-ai/pai-classroom/internal/ai"
	"github.com/p-n-ai/pai-classroom/internal/api"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/export"
	"github.com/p-n-ai/pai-classroom/internal/generation"
	"github.com/p-n-ai/pai-classroom/internal/store"
)

type testEnv struct {
	handler http.Handler
	store   *store.Store
	backend *store.MemoryBackend
	mock    *ai.MockProvider
	feed    *activity.Feed
	budget  *ai.InMemoryBudget
}

func newTestEnv(t *testing.T, reply string) *testEnv {
	t.Helper()
	backend := store.NewMemoryBackend()
	s := store.New(backend)
	mock := ai.NewMockProvider(reply)
	feed := activity.NewFeed()
	budget := ai.NewInMemoryBudget(1000)

	h := api.New(api.Config{
		Store: s,
		Generator: generation.New(generation.Config{
			Completer: mock,
			Budget:    budget,
			IDs:       s.IDs(),
		}),
		Activity:     feed,
		Budget:       budget,
		CORSOrigins:  []string{"*"},
		MaxBodyBytes: 1 << 20,
	})
	return &testEnv{handler: h.Routes(), store: s, backend: backend, mock: mock, feed: feed, budget: budget}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func (e *testEnv) mustCreate(t *testing.T, path, body string) classroom.ID {
	t.Helper()
	rec := e.do(t, http.MethodPost, path, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST %s status = %d, body %s", path, rec.Code, rec.Body.String())
	}
	return decode[struct {
		ID classroom.ID `json:"id"`
	}](t, rec).ID
}

func TestCRUD_Subjects(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/subjects", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty list = %d %q, want 200 []", rec.Code, rec.Body.String())
	}

	id := env.mustCreate(t, "/subjects", `{"name":"Mathematics","color":"#4472C4"}`)
	if id == 0 {
		t.Fatal("created subject should have a minted id")
	}

	rec = env.do(t, http.MethodGet, "/subjects/"+id.String(), "")
	got := decode[classroom.Subject](t, rec)
	if rec.Code != http.StatusOK || got.Name != "Mathematics" {
		t.Fatalf("GET = %d %+v", rec.Code, got)
	}

	rec = env.do(t, http.MethodPut, "/subjects/"+id.String(), `{"name":"Algebra","id":5}`)
	got = decode[classroom.Subject](t, rec)
	if rec.Code != http.StatusOK || got.Name != "Algebra" || got.Color != "#4472C4" || got.ID != id {
		t.Fatalf("PUT = %d %+v", rec.Code, got)
	}

	list := decode[[]classroom.Subject](t, env.do(t, http.MethodGet, "/subjects", ""))
	if len(list) != 1 || list[0].Name != "Algebra" {
		t.Fatalf("list = %+v", list)
	}

	rec = env.do(t, http.MethodDelete, "/subjects/"+id.String(), "")
	if rec.Code != http.StatusOK || decode[map[string]string](t, rec)["message"] != "Subject deleted" {
		t.Fatalf("DELETE = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/subjects/"+id.String(), "")
	if rec.Code != http.StatusNotFound || errorOf(t, rec) != "Subject not found" {
		t.Fatalf("GET deleted = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCRUD_Errors(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing lecture", http.MethodGet, "/lectures/123", "", http.StatusNotFound, "Lecture not found"},
		{"non-numeric id", http.MethodGet, "/tests/abc", "", http.StatusNotFound, "Test not found"},
		{"update missing", http.MethodPut, "/teachers/9", `{"name":"X"}`, http.StatusNotFound, "Teacher not found"},
		{"malformed create", http.MethodPost, "/subjects", `{"name":`, http.StatusBadRequest, "invalid request body"},
		{"malformed update", http.MethodPut, "/subjects/1", `[1,2]`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := errorOf(t, rec); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestCRUD_UpdateIgnoresBodyID(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.mustCreate(t, "/subjects", `{"name":"Chemistry"}`)

	rec := env.do(t, http.MethodPut, "/subjects/"+id.String(), `{"id":"abc","name":"Physics"}`)
	got := decode[classroom.Subject](t, rec)
	if rec.Code != http.StatusOK || got.ID != id || got.Name != "Physics" {
		t.Errorf("PUT = %d %+v, want id %d and name Physics", rec.Code, got, id)
	}
}

func TestCRUD_UpdateWithWrongFieldType(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)

	rec := env.do(t, http.MethodPut, "/teachers/"+id.String(), `{"hours_per_week":"many"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCRUD_DeleteMissingStillConfirms(t *testing.T) {
	env := newTestEnv(t, "")
	for _, path := range []string{"/lectures/42", "/lectures/not-a-number"} {
		rec := env.do(t, http.MethodDelete, path, "")
		if rec.Code != http.StatusOK || decode[map[string]string](t, rec)["message"] != "Lecture deleted" {
			t.Errorf("DELETE %s = %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestCRUD_TestDefaults(t *testing.T) {
	env := newTestEnv(t, "")
	rec := env.do(t, http.MethodPost, "/tests", `{"name":"Quiz","lecture_id":"7","questions":[{"question":"2+2?","options":["3","4"],"answer":"4"}]}`)
	got := decode[classroom.Test](t, rec)
	if got.LectureID != 7 || got.SchemaVersion != classroom.TestSchemaVersion {
		t.Fatalf("test = %+v", got)
	}
	if len(got.Questions) != 1 || got.Questions[0].Answer != 1 {
		t.Errorf("questions = %+v, want answer index 1", got.Questions)
	}
}

func TestSchedules_ReadOnly(t *testing.T) {
	env := newTestEnv(t, "")
	if rec := env.do(t, http.MethodPost, "/schedules", `{}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /schedules status = %d, want 405", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/schedules/1", `{}`); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /schedules/1 status = %d, want 405", rec.Code)
	}
}

const scheduleReply = "Here is your schedule:\n" +
	`{"days":[{"day":"monday","lessons":[{"subject_id":1,"lecture_id":2,"start_time":"09:00","end_time":"10:30"}]}],"teacher_id":999,"week_start":"1999-01-01"}` +
	"\nEnjoy!"

func TestGenerateSchedule(t *testing.T) {
	env := newTestEnv(t, scheduleReply)
	teacherID := env.mustCreate(t, "/teachers", `{"name":"Anna","hours_per_week":10}`)

	rec := env.do(t, http.MethodPost, "/schedules/generate/"+teacherID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[classroom.Schedule](t, rec)
	if got.TeacherID != teacherID || got.WeekStart == "1999-01-01" || got.ID == 0 {
		t.Errorf("schedule header = %+v", got)
	}
	if len(got.Days) != 1 || got.Days[0].Day != "Monday" {
		t.Errorf("days = %+v", got.Days)
	}

	stored, err := store.Schedules.Get(t.Context(), env.store, got.ID)
	if err != nil {
		t.Fatalf("schedule not persisted: %v", err)
	}
	if stored.LessonCount() != 1 {
		t.Errorf("stored lessons = %d", stored.LessonCount())
	}

	events := env.feed.Recent(1)
	if len(events) != 1 || events[0].Type != activity.TypeGenerated || events[0].Entity != "Schedule" {
		t.Errorf("activity = %+v", events)
	}
}

func TestGenerateSchedule_Fallback(t *testing.T) {
	env := newTestEnv(t, "Sorry, I cannot comply.")
	teacherID := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)

	rec := env.do(t, http.MethodPost, "/schedules/generate/"+teacherID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"days":[]`) {
		t.Errorf("body = %s, want empty days array", rec.Body.String())
	}
}

func TestGenerateSchedule_TeacherNotFound(t *testing.T) {
	env := newTestEnv(t, scheduleReply)
	for _, id := range []string{"12345", "nope"} {
		rec := env.do(t, http.MethodPost, "/schedules/generate/"+id, "")
		if rec.Code != http.StatusNotFound || errorOf(t, rec) != "Teacher not found" {
			t.Errorf("generate for %s = %d %s", id, rec.Code, rec.Body.String())
		}
	}
	if env.mock.Calls() != 0 {
		t.Error("completion service should not be called for a missing teacher")
	}
}

func TestGenerateLecture(t *testing.T) {
	env := newTestEnv(t, "# Fractions\n\nA fraction is part of a whole.")
	subjectID := env.mustCreate(t, "/subjects", `{"name":"Mathematics"}`)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing title", `{"subjectId":` + subjectID.String() + `}`, http.StatusBadRequest, "title required"},
		{"blank title", `{"title":"  ","subjectId":1}`, http.StatusBadRequest, "title required"},
		{"missing subject", `{"title":"Fractions"}`, http.StatusBadRequest, "subjectId required"},
		{"empty body", ``, http.StatusBadRequest, "title required"},
		{"unknown subject", `{"title":"Fractions","subjectId":"404"}`, http.StatusNotFound, "Subject not found"},
		{"malformed", `{"title":`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/ai/lectures", tt.body)
			if rec.Code != tt.wantStatus || errorOf(t, rec) != tt.wantError {
				t.Errorf("got %d %s, want %d %q", rec.Code, rec.Body.String(), tt.wantStatus, tt.wantError)
			}
		})
	}

	rec := env.do(t, http.MethodPost, "/ai/lectures", `{"title":"Fractions","subjectId":"`+subjectID.String()+`"}`)
	got := decode[classroom.Lecture](t, rec)
	if rec.Code != http.StatusOK || got.Name != "Fractions" || got.SubjectID != subjectID {
		t.Fatalf("lecture = %d %+v", rec.Code, got)
	}
	if !strings.HasPrefix(got.Content, "# Fractions") {
		t.Errorf("content = %q", got.Content)
	}
	if _, err := store.Lectures.Get(t.Context(), env.store, got.ID); err != nil {
		t.Errorf("lecture not persisted: %v", err)
	}
}

func TestGenerateLecture_FailureUsesPlaceholder(t *testing.T) {
	env := newTestEnv(t, "")
	subjectID := env.mustCreate(t, "/subjects", `{"name":"History"}`)

	rec := env.do(t, http.MethodPost, "/ai/lectures", `{"title":"Rome","subjectId":`+subjectID.String()+`}`)
	got := decode[classroom.Lecture](t, rec)
	if rec.Code != http.StatusOK || got.Content != generation.LecturePlaceholder("Rome") {
		t.Errorf("lecture = %d %+v", rec.Code, got)
	}
}

const testReply = `{"questions": [{"question":"2+2?","type":"multiple-choice","options":["3","4","5"],"answer":1}]}`

func TestGenerateTest(t *testing.T) {
	env := newTestEnv(t, testReply)
	lectureID := env.mustCreate(t, "/lectures", `{"name":"Arithmetic","content":"2+2=4","subject_id":1}`)

	for _, field := range []string{"lectureId", "lecture_id"} {
		t.Run(field, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/ai/tests", `{"`+field+`":`+lectureID.String()+`,"questionCount":1}`)
			got := decode[classroom.Test](t, rec)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
			}
			if got.Name != `Test for lecture "Arithmetic"` || got.LectureID != lectureID {
				t.Errorf("test = %+v", got)
			}
			if len(got.Questions) != 1 || got.Questions[0].Answer != 1 {
				t.Errorf("questions = %+v", got.Questions)
			}
			if got.SchemaVersion != classroom.TestSchemaVersion {
				t.Errorf("schema_version = %d", got.SchemaVersion)
			}
		})
	}
}

func TestGenerateTest_Errors(t *testing.T) {
	env := newTestEnv(t, testReply)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing lecture", `{"questionCount":3}`, http.StatusBadRequest, "lectureId required"},
		{"unknown lecture", `{"lectureId":77}`, http.StatusNotFound, "Lecture not found"},
		{"negative count", `{"lectureId":77,"questionCount":-1}`, http.StatusBadRequest, "questionCount invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/ai/tests", tt.body)
			if rec.Code != tt.wantStatus || errorOf(t, rec) != tt.wantError {
				t.Errorf("got %d %s, want %d %q", rec.Code, rec.Body.String(), tt.wantStatus, tt.wantError)
			}
		})
	}
}

func TestGenerateTest_EmptyReplyStoresEmptyQuestions(t *testing.T) {
	env := newTestEnv(t, "Sorry, I cannot comply.")
	lectureID := env.mustCreate(t, "/lectures", `{"name":"Arithmetic"}`)

	rec := env.do(t, http.MethodPost, "/ai/tests", `{"lectureId":`+lectureID.String()+`}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"questions":[]`) {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_ChargesSessionTeacher(t *testing.T) {
	env := newTestEnv(t, testReply)
	teacherID := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)
	lectureID := env.mustCreate(t, "/lectures", `{"name":"Arithmetic"}`)

	env.do(t, http.MethodPost, "/ai/tests", `{"lectureId":`+lectureID.String()+`}`, api.TeacherHeader, teacherID.String())

	used, _, _ := env.budget.Usage(t.Context(), teacherID.String())
	if used == 0 {
		t.Error("session teacher should be charged for generation")
	}
	anon, _, _ := env.budget.Usage(t.Context(), generation.AnonymousScope)
	if anon != 0 {
		t.Errorf("anonymous usage = %d, want 0", anon)
	}
}

func TestGenerate_UnknownSessionTeacherChargesAnonymous(t *testing.T) {
	env := newTestEnv(t, testReply)
	lectureID := env.mustCreate(t, "/lectures", `{"name":"Arithmetic"}`)

	env.do(t, http.MethodPost, "/ai/tests", `{"lectureId":`+lectureID.String()+`}`, api.TeacherHeader, "77")

	if used, _, _ := env.budget.Usage(t.Context(), "77"); used != 0 {
		t.Errorf("unknown teacher usage = %d, want 0", used)
	}
	if anon, _, _ := env.budget.Usage(t.Context(), generation.AnonymousScope); anon == 0 {
		t.Error("unknown session teacher should be charged as anonymous")
	}
}

func TestGenerate_ExhaustedBudgetNotBypassedByUnknownTeacher(t *testing.T) {
	env := newTestEnv(t, testReply)
	ctx := t.Context()
	teacherID := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)
	lectureID := env.mustCreate(t, "/lectures", `{"name":"Arithmetic"}`)

	for _, scope := range []string{teacherID.String(), generation.AnonymousScope} {
		if err := env.budget.Record(ctx, scope, 5000); err != nil {
			t.Fatalf("Record(%s) error = %v", scope, err)
		}
	}

	body := `{"lectureId":` + lectureID.String() + `}`
	headers := []string{teacherID.String(), "1001", "1002", "1003", "abc", ""}
	for _, h := range headers {
		rec := env.do(t, http.MethodPost, "/ai/tests", body, api.TeacherHeader, h)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"questions":[]`) {
			t.Errorf("teacher %q: got %d %s, want empty test", h, rec.Code, rec.Body.String())
		}
	}
	if calls := env.mock.Calls(); calls != 0 {
		t.Errorf("completion calls after budgets exhausted = %d, want 0", calls)
	}
}

func TestSession(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)

	if rec := env.do(t, http.MethodGet, "/session", ""); rec.Code != http.StatusBadRequest || errorOf(t, rec) != "teacher id required" {
		t.Errorf("no session = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/session", "", api.TeacherHeader, "1"); rec.Code != http.StatusNotFound {
		t.Errorf("dangling session = %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/session", "", api.TeacherHeader, id.String())
	if got := decode[classroom.Teacher](t, rec); rec.Code != http.StatusOK || got.ID != id {
		t.Errorf("header session = %d %+v", rec.Code, got)
	}
	rec = env.do(t, http.MethodGet, "/session?teacher_id="+id.String(), "")
	if got := decode[classroom.Teacher](t, rec); rec.Code != http.StatusOK || got.Name != "Anna" {
		t.Errorf("query session = %d %+v", rec.Code, got)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, scheduleReply)
	env.mustCreate(t, "/subjects", `{"name":"Mathematics"}`)
	teacherID := env.mustCreate(t, "/teachers", `{"name":"Anna"}`)
	env.do(t, http.MethodPost, "/schedules/generate/"+teacherID.String(), "", api.TeacherHeader, teacherID.String())

	type dashboard struct {
		Subjects        int              `json:"subjects"`
		Teachers        int              `json:"teachers"`
		Schedules       int              `json:"schedules"`
		UpcomingLessons int              `json:"upcoming_lessons"`
		RecentActivity  []activity.Event `json:"recent_activity"`
		AIUsage         *struct {
			Used   int64 `json:"used"`
			Budget int64 `json:"budget"`
		} `json:"ai_usage"`
	}

	got := decode[dashboard](t, env.do(t, http.MethodGet, "/dashboard", "", api.TeacherHeader, teacherID.String()))
	if got.Subjects != 1 || got.Teachers != 1 || got.Schedules != 1 {
		t.Errorf("counts = %+v", got)
	}
	if got.UpcomingLessons != 1 {
		t.Errorf("upcoming_lessons = %d, want 1", got.UpcomingLessons)
	}
	if len(got.RecentActivity) != 3 || got.RecentActivity[0].Type != activity.TypeGenerated {
		t.Errorf("recent_activity = %+v", got.RecentActivity)
	}
	if got.AIUsage == nil || got.AIUsage.Used == 0 || got.AIUsage.Budget != 1000 {
		t.Errorf("ai_usage = %+v", got.AIUsage)
	}

	anon := decode[dashboard](t, env.do(t, http.MethodGet, "/dashboard", ""))
	if anon.UpcomingLessons != 0 {
		t.Errorf("upcoming_lessons without session = %d, want 0", anon.UpcomingLessons)
	}
}

func TestExportSchedule(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := t.Context()
	lectureID := classroom.ID(2)
	err := env.store.Update(ctx, func(doc *store.Document) error {
		store.Subjects.Insert(doc, 1, classroom.Subject{Name: "Mathematics"})
		store.Teachers.Insert(doc, 3, classroom.Teacher{Name: "Anna"})
		store.Schedules.Insert(doc, 10, classroom.Schedule{
			TeacherID: 3,
			WeekStart: "2026-03-09",
			Days: []classroom.Day{{Day: "Monday", Lessons: []classroom.Lesson{
				{SubjectID: 1, LectureID: &lectureID, StartTime: "09:00", EndTime: "09:45"},
			}}},
		})
		return nil
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/schedules/10/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "schedule_Anna_2026-03-09_10.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(export.SheetName, "D2"); v != "Mathematics" {
		t.Errorf("D2 = %q, want Mathematics", v)
	}
	if v, _ := f.GetCellValue(export.SheetName, "E2"); v != classroom.Unknown {
		t.Errorf("E2 = %q, want %q", v, classroom.Unknown)
	}

	if rec := env.do(t, http.MethodGet, "/schedules/99/export", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing export status = %d", rec.Code)
	}
}

func TestActivity(t *testing.T) {
	env := newTestEnv(t, "")
	id := env.mustCreate(t, "/subjects", `{"name":"Art"}`)
	env.do(t, http.MethodPut, "/subjects/"+id.String(), `{"name":"Fine Art"}`)
	env.do(t, http.MethodDelete, "/subjects/"+id.String(), "")

	events := decode[[]activity.Event](t, env.do(t, http.MethodGet, "/activity", ""))
	want := []string{activity.TypeDeleted, activity.TypeUpdated, activity.TypeCreated}
	if len(events) != len(want) {
		t.Fatalf("events = %+v", events)
	}
	for i, typ := range want {
		if events[i].Type != typ || events[i].RecordID != id {
			t.Errorf("events[%d] = %+v, want type %s", i, events[i], typ)
		}
	}
	if events[1].Name != "Fine Art" {
		t.Errorf("updated event name = %q", events[1].Name)
	}
}

type brokenBackend struct{}

func (brokenBackend) Load(context.Context) (*store.Document, error) {
	return nil, errors.New("disk unplugged")
}

func (brokenBackend) Save(context.Context, *store.Document) error {
	return errors.New("disk unplugged")
}

func (brokenBackend) HealthCheck(context.Context) error {
	return errors.New("disk unplugged")
}

func TestPersistenceFailure(t *testing.T) {
	h := api.New(api.Config{
		Store:     store.New(brokenBackend{}),
		Generator: generation.New(generation.Config{}),
	}).Routes()

	for _, path := range []string{"/subjects", "/lectures/1", "/dashboard"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError || errorOf(t, rec) != "internal server error" {
			t.Errorf("GET %s = %d %s", path, rec.Code, rec.Body.String())
		}
	}
}
