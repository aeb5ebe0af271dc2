package main

import (
	"fmt"
	"time"

	"orgscan/internal/jobs"
)

type jobSummary struct {
	ID           string `json:"job_id"`
	Status       string `json:"status"`
	Filename     string `json:"pdf_filename"`
	CompanyName  string `json:"company_name,omitempty"`
	MembersCount int    `json:"members_count"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type jobDetailView struct {
	jobSummary
	TaskID  string               `json:"task_id,omitempty"`
	Org     *jobs.OrgProfile     `json:"github_org_data,omitempty"`
	Members []jobs.MemberSummary `json:"github_members,omitempty"`
}

func summarize(job *jobs.Job) jobSummary {
	return jobSummary{
		ID:           job.ID,
		Status:       string(job.Status),
		Filename:     job.Filename,
		CompanyName:  job.CompanyName,
		MembersCount: job.MembersCount(),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func jobSummaries(list []*jobs.Job) []jobSummary {
	summaries := make([]jobSummary, 0, len(list))
	for _, job := range list {
		summaries = append(summaries, summarize(job))
	}
	return summaries
}

func jobDetail(job *jobs.Job) (jobDetailView, error) {
	profile, err := job.OrgProfile()
	if err != nil {
		return jobDetailView{}, fmt.Errorf("job %s: %w", job.ID, err)
	}
	members, err := job.Members()
	if err != nil {
		return jobDetailView{}, fmt.Errorf("job %s: %w", job.ID, err)
	}
	return jobDetailView{
		jobSummary: summarize(job),
		TaskID:     job.TaskID,
		Org:        profile,
		Members:    members,
	}, nil
}
