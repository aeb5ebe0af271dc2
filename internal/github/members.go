package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
)

type memberPayload struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
}

// fetchMembers lists an organization's public members in fixed-size pages.
// Paging stops at the configured limit, at a short page, or at not-found; in
// every case whatever was accumulated so far is returned.
func (c *Client) fetchMembers(ctx context.Context, handle string) []jobs.MemberSummary {
	var members []jobs.MemberSummary

	for page := 1; len(members) < c.memberLimit; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(c.memberPageSize))

		status, body, ok := c.do(ctx, "/orgs/"+url.PathEscape(handle)+"/members", params)
		if !ok {
			break
		}
		if status == http.StatusNotFound {
			c.logger.Info("organization has no member listing", logging.String("handle", handle))
			break
		}
		if status != http.StatusOK {
			c.logger.Warn("member listing failed",
				logging.String("handle", handle),
				logging.Int("status", status),
			)
			break
		}

		var pageMembers []memberPayload
		if err := json.Unmarshal(body, &pageMembers); err != nil {
			c.logger.Warn("member page decode failed", logging.Error(err))
			break
		}
		if len(pageMembers) == 0 {
			break
		}

		for _, member := range pageMembers {
			members = append(members, jobs.MemberSummary{
				Login:     member.Login,
				AvatarURL: member.AvatarURL,
				HTMLURL:   member.HTMLURL,
				Type:      member.Type,
			})
		}

		if len(pageMembers) < c.memberPageSize {
			break
		}
	}

	if len(members) > c.memberLimit {
		members = members[:c.memberLimit]
	}
	return members
}
