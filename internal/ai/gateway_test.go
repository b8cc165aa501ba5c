package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-classroom/internal/ai"
)

func TestMockProvider_Complete(t *testing.T) {
	mock := ai.NewMockProvider("test response")

	resp, err := mock.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Hello"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("Content = %q, want %q", resp.Content, "test response")
	}
	if resp.Model != "mock" {
		t.Errorf("Model = %q, want %q", resp.Model, "mock")
	}
	if mock.LastRequest() == nil || mock.LastRequest().Messages[0].Content != "Hello" {
		t.Errorf("LastRequest() = %+v", mock.LastRequest())
	}
}

func TestMockProvider_Responses(t *testing.T) {
	mock := &ai.MockProvider{Responses: []string{"one", "two"}}
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		resp, _ := mock.Complete(ctx, ai.CompletionRequest{})
		got = append(got, resp.Content)
	}
	want := []string{"one", "two", "two"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if mock.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", mock.Calls())
	}
}

func TestMockProvider_Error(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("down")}
	if _, err := mock.Complete(context.Background(), ai.CompletionRequest{}); err == nil {
		t.Fatal("Complete() should return the configured error")
	}
	if err := mock.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should return the configured error")
	}
}

func TestMockProvider_Models(t *testing.T) {
	mock := ai.NewMockProvider("response")
	if len(mock.Models()) == 0 {
		t.Error("Models() returned empty")
	}
}

func TestTaskType_String(t *testing.T) {
	tests := []struct {
		task     ai.TaskType
		expected string
	}{
		{ai.TaskSchedule, "schedule"},
		{ai.TaskLecture, "lecture"},
		{ai.TaskTest, "test"},
		{ai.TaskType(42), "unknown"},
	}
	for _, tt := range tests {
		if tt.task.String() != tt.expected {
			t.Errorf("TaskType.String() = %q, want %q", tt.task.String(), tt.expected)
		}
	}
}

func TestCompletionResponse_TotalTokens(t *testing.T) {
	resp := ai.CompletionResponse{InputTokens: 100, OutputTokens: 50}
	if got := resp.TotalTokens(); got != 150 {
		t.Errorf("TotalTokens() = %d, want 150", got)
	}
}
