package tagging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docstore/internal/logger"
	"docstore/internal/model"
	"docstore/internal/repository"
	repoMocks "docstore/internal/repository/mocks"
)

// fakeLLM returns a canned answer and remembers the prompt it saw.
type fakeLLM struct {
	answer string
	err    error
	prompt string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestWorkflowRun(t *testing.T) {
	ctx := context.Background()
	req := model.TaggingRequest{DocumentID: "doc-1", OwnerID: "u-1", Title: "Intro to Go", Preview: "Goroutines and channels"}

	tests := []struct {
		name        string
		llm         *fakeLLM
		setupMocks  func(m *repoMocks.MockTagRepository)
		wantOutcome model.TaggingOutcome
		wantState   State
		wantMessage string
		wantTags    []string
	}{
		{
			name: "applies parsed tags",
			llm:  &fakeLLM{answer: "Go, concurrency, go"},
			setupMocks: func(m *repoMocks.MockTagRepository) {
				m.On("ListNames", ctx).Return([]string{"go"}, nil)
				m.On("ApplyTags", ctx, "doc-1", []string{"go", "concurrency"}).
					Return([]model.Tag{{Name: "go"}, {Name: "concurrency"}}, nil)
			},
			wantOutcome: model.OutcomeApplied,
			wantState:   StateDone,
			wantMessage: "Successfully applied tags to document doc-1",
			wantTags:    []string{"go", "concurrency"},
		},
		{
			name: "vocabulary failure falls back to empty",
			llm:  &fakeLLM{answer: "go"},
			setupMocks: func(m *repoMocks.MockTagRepository) {
				m.On("ListNames", ctx).Return(nil, errors.New("db down"))
				m.On("ApplyTags", ctx, "doc-1", []string{"go"}).Return([]model.Tag{{Name: "go"}}, nil)
			},
			wantOutcome: model.OutcomeApplied,
			wantState:   StateDone,
			wantMessage: "Successfully applied tags to document doc-1",
			wantTags:    []string{"go"},
		},
		{
			name: "document deleted before apply",
			llm:  &fakeLLM{answer: "go"},
			setupMocks: func(m *repoMocks.MockTagRepository) {
				m.On("ListNames", ctx).Return([]string{}, nil)
				m.On("ApplyTags", ctx, "doc-1", mock.Anything).Return(nil, repository.ErrNotFound)
			},
			wantOutcome: model.OutcomeNotFound,
			wantState:   StateApply,
			wantMessage: "Document not found",
			wantTags:    []string{"go"},
		},
		{
			name: "apply error is reported",
			llm:  &fakeLLM{answer: "go"},
			setupMocks: func(m *repoMocks.MockTagRepository) {
				m.On("ListNames", ctx).Return([]string{}, nil)
				m.On("ApplyTags", ctx, "doc-1", mock.Anything).Return(nil, errors.New("deadlock detected"))
			},
			wantOutcome: model.OutcomeFailed,
			wantState:   StateApply,
			wantMessage: "Error applying tags: deadlock detected",
			wantTags:    []string{"go"},
		},
		{
			name: "llm error stops before apply",
			llm:  &fakeLLM{err: errors.New("rate limited")},
			setupMocks: func(m *repoMocks.MockTagRepository) {
				m.On("ListNames", ctx).Return([]string{}, nil)
			},
			wantOutcome: model.OutcomeFailed,
			wantState:   StateGenerate,
			wantMessage: "Error generating tags: rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mTags := new(repoMocks.MockTagRepository)
			tt.setupMocks(mTags)
			wf := NewWorkflow(tt.llm, mTags, logger.Nop())

			res := wf.Run(ctx, req)

			assert.Equal(t, "doc-1", res.DocumentID)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantState, res.Reached)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.wantTags, res.Tags)
			assert.True(t, strings.Contains(tt.llm.prompt, "Intro to Go"))
			mTags.AssertExpectations(t)
		})
	}
}
