// Package ai provides a provider-agnostic chat completion gateway. Providers are
// tried in registration order by the Router; token budgets are enforced by the
// caller through a BudgetChecker.
package ai

import (
	"context"
	"errors"
)

// TaskType names the kind of generation a request belongs to. It is carried for
// logging and budget accounting only.
type TaskType int

const (
	TaskSchedule TaskType = iota
	TaskLecture
	TaskTest
)

func (t TaskType) String() string {
	switch t {
	case TaskSchedule:
		return "schedule"
	case TaskLecture:
		return "lecture"
	case TaskTest:
		return "test"
	default:
		return "unknown"
	}
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoProvider is returned by the Router when nothing is registered.
var ErrNoProvider = errors.New("no AI provider configured")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Completer is the single call the generation layer needs.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Completer
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}
