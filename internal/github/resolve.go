package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"orgscan/internal/jobs"
	"orgscan/internal/logging"
)

// companyHandles maps normalized company names to their directory handle.
// Checked before any network call.
var companyHandles = map[string]string{
	"google":     "google",
	"microsoft":  "microsoft",
	"facebook":   "facebook",
	"meta":       "facebook",
	"amazon":     "amzn",
	"apple":      "apple",
	"netflix":    "netflix",
	"uber":       "uber",
	"airbnb":     "airbnb",
	"spotify":    "spotify",
	"twitter":    "twitter",
	"x":          "twitter",
	"tesla":      "tesla",
	"oracle":     "oracle",
	"ibm":        "ibm",
	"intel":      "intel",
	"nvidia":     "nvidia",
	"adobe":      "adobe",
	"salesforce": "salesforce",
	"paypal":     "paypal",
	"stripe":     "stripe",
	"square":     "square",
	"shopify":    "shopify",
	"twilio":     "twilio",
	"atlassian":  "atlassian",
	"slack":      "slackhq",
	"docker":     "docker",
	"kubernetes": "kubernetes",
	"hashicorp":  "hashicorp",
	"elastic":    "elastic",
	"mongodb":    "mongodb",
	"redis":      "redis",
	"postgresql": "postgresql",
	"apache":     "apache",
	"mozilla":    "mozilla",
	"wordpress":  "wordpress",
	"automattic": "automattic",
}

// Resolve maps a company name to a profile snapshot and member list. A nil
// profile means the directory has no matching entry; degraded external calls
// also land here rather than erroring, per the enrichment failure policy.
func (c *Client) Resolve(ctx context.Context, name string) (*jobs.OrgProfile, []jobs.MemberSummary, error) {
	handle, ok := c.ResolveHandle(ctx, name)
	if !ok {
		c.logger.Info("no directory entry found", logging.String("company", name))
		return nil, nil, nil
	}

	profile := c.fetchProfile(ctx, handle)
	if profile == nil {
		return nil, nil, nil
	}

	members := c.fetchMembers(ctx, handle)
	return profile, members, nil
}

// ResolveHandle finds the directory handle for a company name: fixed table
// first, then the search endpoint, then a direct probe of the normalized name.
func (c *Client) ResolveHandle(ctx context.Context, name string) (string, bool) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", false
	}

	if handle, ok := companyHandles[normalized]; ok {
		return handle, true
	}

	if handle, ok := c.searchOrganization(ctx, name); ok {
		return handle, true
	}

	// Last resort: the normalized name might itself be a handle.
	status, _, ok := c.do(ctx, "/orgs/"+url.PathEscape(normalized), nil)
	if ok && status == http.StatusOK {
		return normalized, true
	}

	return "", false
}

func (c *Client) searchOrganization(ctx context.Context, name string) (string, bool) {
	params := url.Values{}
	params.Set("q", name+" type:org")
	params.Set("per_page", strconv.Itoa(5))

	status, body, ok := c.do(ctx, "/search/users", params)
	if !ok || status != http.StatusOK {
		return "", false
	}

	var result struct {
		TotalCount int `json:"total_count"`
		Items      []struct {
			Login string `json:"login"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warn("directory search decode failed", logging.Error(err))
		return "", false
	}
	if result.TotalCount == 0 || len(result.Items) == 0 {
		return "", false
	}
	return result.Items[0].Login, true
}

// normalizeName lowercases and strips spaces, commas, and periods so "Google,
// Inc." and "google inc" probe the same handle.
func normalizeName(name string) string {
	replacer := strings.NewReplacer(" ", "", ",", "", ".", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}
