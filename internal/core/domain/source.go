package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	return uuid.NewString()
}

// SourceType identifies what kind of content a source holds
type SourceType string

const (
	// SourceTypeText is raw text pasted or uploaded by the tenant
	SourceTypeText SourceType = "text"

	// SourceTypeQA is a list of question/answer pairs
	SourceTypeQA SourceType = "qa"

	// SourceTypeWebsite is a list of crawlable page URLs
	SourceTypeWebsite SourceType = "website"

	// SourceTypeDocument is an uploaded document's extracted text
	SourceTypeDocument SourceType = "document"

	// SourceTypeNotion is a collection of Notion workspace pages
	SourceTypeNotion SourceType = "notion"
)

// ValidSourceType reports whether t is a known source type.
func ValidSourceType(t SourceType) bool {
	switch t {
	case SourceTypeText, SourceTypeQA, SourceTypeWebsite, SourceTypeDocument, SourceTypeNotion:
		return true
	}
	return false
}

// SupportsRetrain reports whether a source type can be re-crawled.
// Only remote content (websites, Notion pages) changes between runs;
// text, qa, and document sources are immutable once registered.
func (t SourceType) SupportsRetrain() bool {
	return t == SourceTypeWebsite || t == SourceTypeNotion
}

// SourceStatus represents the lifecycle state of a source
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusCompleted  SourceStatus = "completed"
	SourceStatusFailed     SourceStatus = "failed"
)

// Source represents one ingested content unit owned by a project.
// Its chunks are created and destroyed only by the processor; the
// status field is the claim guard for at-most-one concurrent run.
type Source struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Name      string       `json:"name"`
	Type      SourceType   `json:"type"`
	Status    SourceStatus `json:"status"`
	Config    SourceConfig `json:"config"`

	// Counters set by the processor on completion
	ChunkCount int `json:"chunk_count"`
	TokenCount int `json:"token_count"`

	// ErrorMessage holds the last processing failure, cleared on claim
	ErrorMessage string `json:"error_message,omitempty"`

	// AutoRetrain marks the source for scheduled re-ingestion
	AutoRetrain bool `json:"auto_retrain"`

	// LastTrainedAt is stamped when an auto-retrain source completes
	LastTrainedAt *time.Time `json:"last_trained_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceConfig holds type-specific content configuration
type SourceConfig struct {
	// Text / document sources
	Text  string `json:"text,omitempty"`
	Title string `json:"title,omitempty"`

	// QA sources
	Pairs []QAPair `json:"pairs,omitempty"`

	// Website sources
	URLs []string `json:"urls,omitempty"`

	// Notion sources
	PageIDs      []string `json:"page_ids,omitempty"`
	CredentialID string   `json:"credential_id,omitempty"`

	// Generic
	Extra map[string]string `json:"extra,omitempty"`
}

// QAPair is one question/answer unit of a qa source
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NewSource creates a pending source for a project.
func NewSource(projectID, name string, sourceType SourceType, config SourceConfig) *Source {
	now := time.Now()
	return &Source{
		ID:        GenerateID(),
		ProjectID: projectID,
		Name:      name,
		Type:      sourceType,
		Status:    SourceStatusPending,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RetrainDue reports whether the cool-down has elapsed since the last
// completed retrain. A source that never trained is always due.
func (s *Source) RetrainDue(cooldown time.Duration) bool {
	if s.LastTrainedAt == nil {
		return true
	}
	return time.Since(*s.LastTrainedAt) >= cooldown
}

// ProcessResult is the outcome of one processing run
type ProcessResult struct {
	SourceID      string  `json:"source_id"`
	Success       bool    `json:"success"`
	ChunksCreated int     `json:"chunks_created,omitempty"`
	TotalTokens   int     `json:"total_tokens,omitempty"`
	Error         string  `json:"error,omitempty"`
	Duration      float64 `json:"duration_seconds"`
}

// SweepResult is the outcome of a batch sweep over pending sources
type SweepResult struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Skipped int              `json:"skipped"`
	Details []*ProcessResult `json:"details"`
}
