package server

import (
	"fmt"
	"time"

	"orgscan/internal/jobs"
)

// statusEntry is the status endpoint payload. Enrichment fields appear only
// for completed jobs, the error only for failed ones.
type statusEntry struct {
	JobID        string               `json:"job_id"`
	Status       string               `json:"status"`
	PDFFilename  string               `json:"pdf_filename"`
	Timestamp    string               `json:"timestamp"`
	TaskID       string               `json:"task_id,omitempty"`
	CompanyName  *string              `json:"company_name,omitempty"`
	OrgData      *jobs.OrgProfile     `json:"github_org_data,omitempty"`
	Members      []jobs.MemberSummary `json:"github_members,omitempty"`
	MembersCount *int                 `json:"members_count,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

type listEntry struct {
	JobID        string `json:"job_id"`
	PDFFilename  string `json:"pdf_filename"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	CompanyName  string `json:"company_name"`
	MembersCount int    `json:"members_count"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func statusView(job *jobs.Job) (statusEntry, error) {
	view := statusEntry{
		JobID:       job.ID,
		Status:      string(job.Status),
		PDFFilename: job.Filename,
		Timestamp:   job.CreatedAt.UTC().Format(time.RFC3339Nano),
		TaskID:      job.TaskID,
	}

	switch job.Status {
	case jobs.StatusCompleted:
		name := job.CompanyName
		view.CompanyName = &name
		profile, err := job.OrgProfile()
		if err != nil {
			return statusEntry{}, fmt.Errorf("job %s: %w", job.ID, err)
		}
		view.OrgData = profile
		members, err := job.Members()
		if err != nil {
			return statusEntry{}, fmt.Errorf("job %s: %w", job.ID, err)
		}
		view.Members = members
		count := len(members)
		view.MembersCount = &count
	case jobs.StatusFailed:
		view.ErrorMessage = job.ErrorMessage
	}
	return view, nil
}

func listView(job *jobs.Job) listEntry {
	return listEntry{
		JobID:        job.ID,
		PDFFilename:  job.Filename,
		Status:       string(job.Status),
		Timestamp:    job.CreatedAt.UTC().Format(time.RFC3339Nano),
		CompanyName:  job.CompanyName,
		MembersCount: job.MembersCount(),
		ErrorMessage: job.ErrorMessage,
	}
}
