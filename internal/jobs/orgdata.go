package jobs

import (
	"encoding/json"
	"fmt"
)

// OrgProfile is a denormalized snapshot of a directory service entry. The
// snapshot is immutable once fetched; a re-fetch replaces it wholesale.
type OrgProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Blog        string `json:"blog"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	// Type distinguishes "Organization" from "User" entries.
	Type    string `json:"type"`
	HTMLURL string `json:"html_url"`
	// Company is the self-declared affiliation a user profile exposes.
	// Organization profiles leave it empty.
	Company string `json:"company,omitempty"`
}

// MemberSummary is one entry in an organization's public member list.
type MemberSummary struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
}

// SetOrgProfile stores the profile snapshot on the job.
func (j *Job) SetOrgProfile(profile *OrgProfile) error {
	if profile == nil {
		j.OrgProfileJSON = ""
		return nil
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal org profile: %w", err)
	}
	j.OrgProfileJSON = string(encoded)
	return nil
}

// OrgProfile decodes the stored profile snapshot, or nil when absent.
func (j *Job) OrgProfile() (*OrgProfile, error) {
	if j.OrgProfileJSON == "" {
		return nil, nil
	}
	var profile OrgProfile
	if err := json.Unmarshal([]byte(j.OrgProfileJSON), &profile); err != nil {
		return nil, fmt.Errorf("unmarshal org profile: %w", err)
	}
	return &profile, nil
}

// SetMembers stores the member list snapshot on the job.
func (j *Job) SetMembers(members []MemberSummary) error {
	if members == nil {
		j.MembersJSON = ""
		return nil
	}
	encoded, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	j.MembersJSON = string(encoded)
	return nil
}

// Members decodes the stored member list, or nil when absent.
func (j *Job) Members() ([]MemberSummary, error) {
	if j.MembersJSON == "" {
		return nil, nil
	}
	var members []MemberSummary
	if err := json.Unmarshal([]byte(j.MembersJSON), &members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	return members, nil
}

// MembersCount reports the stored member count; 0 when the list is absent.
func (j *Job) MembersCount() int {
	members, err := j.Members()
	if err != nil {
		return 0
	}
	return len(members)
}
