package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
)

type profilePayload struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Bio         string `json:"bio"`
	Blog        string `json:"blog"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Type        string `json:"type"`
	HTMLURL     string `json:"html_url"`
	Company     string `json:"company"`
}

// fetchProfile loads the organization entry for a handle. When the handle
// belongs to an individual account instead, the user profile is fetched and
// returned with its self-declared company affiliation. Anything other than
// success or not-found degrades to nil.
func (c *Client) fetchProfile(ctx context.Context, handle string) *jobs.OrgProfile {
	status, body, ok := c.do(ctx, "/orgs/"+url.PathEscape(handle), nil)
	if !ok {
		return nil
	}

	switch status {
	case http.StatusOK:
		return c.decodeProfile(body, false)
	case http.StatusNotFound:
		return c.fetchUserProfile(ctx, handle)
	default:
		c.logger.Warn("organization fetch failed",
			logging.String("handle", handle),
			logging.Int("status", status),
		)
		return nil
	}
}

func (c *Client) fetchUserProfile(ctx context.Context, handle string) *jobs.OrgProfile {
	status, body, ok := c.do(ctx, "/users/"+url.PathEscape(handle), nil)
	if !ok || status != http.StatusOK {
		return nil
	}
	return c.decodeProfile(body, true)
}

func (c *Client) decodeProfile(body []byte, user bool) *jobs.OrgProfile {
	var payload profilePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("profile decode failed", logging.Error(err))
		return nil
	}

	profile := &jobs.OrgProfile{
		Login:       payload.Login,
		Name:        payload.Name,
		Description: payload.Description,
		Blog:        payload.Blog,
		Location:    payload.Location,
		Email:       payload.Email,
		PublicRepos: payload.PublicRepos,
		Followers:   payload.Followers,
		CreatedAt:   payload.CreatedAt,
		UpdatedAt:   payload.UpdatedAt,
		Type:        payload.Type,
		HTMLURL:     payload.HTMLURL,
	}
	if user {
		// User entries describe themselves in "bio" and expose an explicit
		// company affiliation; organizations carry neither.
		if profile.Description == "" {
			profile.Description = payload.Bio
		}
		profile.Company = payload.Company
	}
	return profile
}
