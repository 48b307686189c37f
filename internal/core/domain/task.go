package domain

import "time"

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeProcessSource runs the processor for a specific source
	TaskTypeProcessSource TaskType = "process_source"

	// TaskTypeProcessPending sweeps a page of pending sources
	TaskTypeProcessPending TaskType = "process_pending"

	// TaskTypeRetrainSweep re-enqueues eligible auto-retrain sources
	TaskTypeRetrainSweep TaskType = "retrain_sweep"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers
type Task struct {
	ID        string   `json:"id"`
	Type      TaskType `json:"type"`
	ProjectID string   `json:"project_id,omitempty"`

	// Payload contains task-specific data.
	// For process_source: {"source_id": "src-123"}
	Payload map[string]string `json:"payload"`

	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ScheduledFor is when the task should be processed (for delayed tasks)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, projectID string, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		ProjectID:    projectID,
		Payload:      payload,
		Status:       TaskStatusPending,
		Attempts:     0,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewProcessSourceTask creates a task to process a specific source
func NewProcessSourceTask(projectID, sourceID string) *Task {
	return NewTask(TaskTypeProcessSource, projectID, map[string]string{
		"source_id": sourceID,
	})
}

// NewRetrainSourceTask creates a task to re-process a completed
// auto-retrain source from scratch
func NewRetrainSourceTask(projectID, sourceID string) *Task {
	return NewTask(TaskTypeProcessSource, projectID, map[string]string{
		"source_id": sourceID,
		"retrain":   "true",
	})
}

// NewProcessPendingTask creates a task to sweep pending sources
func NewProcessPendingTask() *Task {
	return NewTask(TaskTypeProcessPending, "", nil)
}

// NewRetrainSweepTask creates a task that runs one retrain sweep
func NewRetrainSweepTask() *Task {
	return NewTask(TaskTypeRetrainSweep, "", nil)
}

// SourceID extracts the source_id from the payload (for process_source tasks)
func (t *Task) SourceID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["source_id"]
}

// Retrain reports whether a process_source task should force a
// from-scratch run of a completed source
func (t *Task) Retrain() bool {
	if t.Payload == nil {
		return false
	}
	return t.Payload["retrain"] == "true"
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc., capped at 5 minutes
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}
