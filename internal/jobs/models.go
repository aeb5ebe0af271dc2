package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a processing job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one document-processing request persisted in SQLite.
type Job struct {
	ID          string
	Filename    string
	Status      Status
	CompanyName string
	// OrgProfileJSON and MembersJSON hold the at-rest snapshots fetched from
	// the directory service. Empty means the enrichment was not obtained.
	OrgProfileJSON string
	MembersJSON    string
	ErrorMessage   string
	TaskID         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetProcessing moves the job into the in-flight state.
func (j *Job) SetProcessing() {
	j.Status = StatusProcessing
	j.ErrorMessage = ""
}

// SetCompleted marks the job finished, keeping whatever enrichment was obtained.
func (j *Job) SetCompleted() {
	j.Status = StatusCompleted
	j.ErrorMessage = ""
}

// SetFailed marks the job as failed with the given error message. Partial
// enrichment is discarded so a failed record never carries half a result.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.CompanyName = ""
	j.OrgProfileJSON = ""
	j.MembersJSON = ""
}

// validate enforces the persisted invariants before a commit.
func (j *Job) validate() error {
	if _, ok := statusSet[j.Status]; !ok {
		return fmt.Errorf("unknown status %q", j.Status)
	}
	if j.Status == StatusFailed && strings.TrimSpace(j.ErrorMessage) == "" {
		return fmt.Errorf("failed job %s requires an error message", j.ID)
	}
	if j.Status != StatusFailed && j.ErrorMessage != "" {
		return fmt.Errorf("job %s carries an error message with status %s", j.ID, j.Status)
	}
	if j.Status != StatusCompleted && (j.OrgProfileJSON != "" || j.MembersJSON != "") {
		return fmt.Errorf("job %s carries enrichment with status %s", j.ID, j.Status)
	}
	return nil
}
