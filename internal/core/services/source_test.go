package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven/mocks"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

type sourceFixture struct {
	sources    *mocks.MockSourceStore
	chunkIndex *mocks.MockChunkIndex
	projects   *mocks.MockProjectStore
	taskQueue  *mocks.MockTaskQueue
	service    driving.SourceService
}

func newSourceFixture(t *testing.T) *sourceFixture {
	t.Helper()
	f := &sourceFixture{
		sources:    mocks.NewMockSourceStore(),
		chunkIndex: mocks.NewMockChunkIndex(),
		projects:   mocks.NewMockProjectStore(),
		taskQueue:  mocks.NewMockTaskQueue(),
	}
	f.projects.AddProject(&domain.Project{ID: "proj-1", OrganizationID: "org-1", Active: true})
	f.projects.AddProject(&domain.Project{ID: "proj-frozen", OrganizationID: "org-1", Active: false})
	f.service = NewSourceService(f.sources, f.chunkIndex, f.projects, f.taskQueue, nil)
	return f
}

func textRequest() driving.CreateSourceRequest {
	return driving.CreateSourceRequest{
		ProjectID: "proj-1",
		Name:      "product notes",
		Type:      domain.SourceTypeText,
		Config:    domain.SourceConfig{Text: "Some content."},
	}
}

func TestCreateSource(t *testing.T) {
	f := newSourceFixture(t)

	source, err := f.service.Create(context.Background(), textRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if source.Status != domain.SourceStatusPending {
		t.Errorf("expected pending status, got %s", source.Status)
	}
	if source.ID == "" {
		t.Error("expected generated id")
	}

	pending := f.taskQueue.PendingTasks()
	if len(pending) != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", len(pending))
	}
	task := pending[0]
	if task.Type != domain.TaskTypeProcessSource {
		t.Errorf("unexpected task type: %s", task.Type)
	}
	if task.SourceID() != source.ID {
		t.Errorf("task source mismatch: %q", task.SourceID())
	}
	if task.Retrain() {
		t.Error("create task must not carry the retrain flag")
	}
}

func TestCreateSource_AutoRetrainOnlyForRecrawlableTypes(t *testing.T) {
	f := newSourceFixture(t)

	req := textRequest()
	req.AutoRetrain = true
	source, err := f.service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if source.AutoRetrain {
		t.Error("text sources cannot auto-retrain")
	}

	req = driving.CreateSourceRequest{
		ProjectID:   "proj-1",
		Name:        "docs site",
		Type:        domain.SourceTypeWebsite,
		Config:      domain.SourceConfig{URLs: []string{"https://example.com"}},
		AutoRetrain: true,
	}
	source, err = f.service.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !source.AutoRetrain {
		t.Error("website sources should keep the auto-retrain flag")
	}
}

func TestCreateSource_Validation(t *testing.T) {
	f := newSourceFixture(t)

	tests := []struct {
		name   string
		mutate func(*driving.CreateSourceRequest)
	}{
		{"missing project", func(r *driving.CreateSourceRequest) { r.ProjectID = "" }},
		{"missing name", func(r *driving.CreateSourceRequest) { r.Name = "   " }},
		{"unknown type", func(r *driving.CreateSourceRequest) { r.Type = "rss" }},
		{"text without content", func(r *driving.CreateSourceRequest) { r.Config.Text = "" }},
		{"qa without pairs", func(r *driving.CreateSourceRequest) {
			r.Type = domain.SourceTypeQA
			r.Config = domain.SourceConfig{}
		}},
		{"website without urls", func(r *driving.CreateSourceRequest) {
			r.Type = domain.SourceTypeWebsite
			r.Config = domain.SourceConfig{}
		}},
		{"notion without credential", func(r *driving.CreateSourceRequest) {
			r.Type = domain.SourceTypeNotion
			r.Config = domain.SourceConfig{PageIDs: []string{"p"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := textRequest()
			tt.mutate(&req)
			if _, err := f.service.Create(context.Background(), req); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateSource_InactiveProject(t *testing.T) {
	f := newSourceFixture(t)

	req := textRequest()
	req.ProjectID = "proj-frozen"
	if _, err := f.service.Create(context.Background(), req); !errors.Is(err, domain.ErrProjectInactive) {
		t.Errorf("expected ErrProjectInactive, got %v", err)
	}

	req.ProjectID = "proj-missing"
	if _, err := f.service.Create(context.Background(), req); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSource_EnqueueFailureKeepsSource(t *testing.T) {
	f := newSourceFixture(t)
	f.taskQueue.FailEnqueue = fmt.Errorf("redis down")

	source, err := f.service.Create(context.Background(), textRequest())
	if err != nil {
		t.Fatalf("Create should survive enqueue failure: %v", err)
	}

	stored, err := f.sources.Get(context.Background(), source.ID)
	if err != nil {
		t.Fatalf("source not persisted: %v", err)
	}
	if stored.Status != domain.SourceStatusPending {
		t.Errorf("expected pending status, got %s", stored.Status)
	}
}

func TestDeleteSource(t *testing.T) {
	f := newSourceFixture(t)
	source, err := f.service.Create(context.Background(), textRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := f.chunkIndex.SaveBatch(context.Background(), []*domain.Chunk{{
		ID:        "chunk-1",
		SourceID:  source.ID,
		ProjectID: source.ProjectID,
		Content:   "body",
		Embedding: []float32{1},
	}}); err != nil {
		t.Fatalf("seed chunk: %v", err)
	}

	if err := f.service.Delete(context.Background(), source.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.sources.Get(context.Background(), source.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected source gone, got %v", err)
	}
	if f.chunkIndex.Count() != 0 {
		t.Errorf("expected chunks gone, got %d", f.chunkIndex.Count())
	}
}

func TestListSources(t *testing.T) {
	f := newSourceFixture(t)
	if _, err := f.service.Create(context.Background(), textRequest()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sources, err := f.service.List(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(sources))
	}

	if _, err := f.service.List(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty project, got %v", err)
	}
}
