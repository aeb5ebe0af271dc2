package extract

import (
	"context"
	"regexp"
	"strings"
)

// knownCompanies maps well-known company mentions to their canonical GitHub
// handle. Matching is a case-insensitive substring scan over the full text.
var knownCompanies = []struct {
	mention string
	handle  string
}{
	{"microsoft", "microsoft"},
	{"google", "google"},
	{"facebook", "facebook"},
	{"meta", "facebook"},
	{"amazon", "amazon"},
	{"aws", "aws"},
	{"apple", "apple"},
	{"netflix", "netflix"},
	{"uber", "uber"},
	{"airbnb", "airbnb"},
	{"spotify", "spotify"},
	{"twitter", "twitter"},
	{"tesla", "tesla"},
	{"oracle", "oracle"},
	{"ibm", "ibm"},
	{"intel", "intel"},
	{"nvidia", "nvidia"},
	{"adobe", "adobe"},
	{"salesforce", "salesforce"},
	{"paypal", "paypal"},
	{"stripe", "stripe"},
	{"github", "github"},
	{"gitlab", "gitlab"},
	{"docker", "docker"},
	{"kubernetes", "kubernetes"},
	{"tensorflow", "tensorflow"},
	{"pytorch", "pytorch"},
	{"react", "facebook"},
	{"angular", "angular"},
	{"vue", "vuejs"},
}

var profileURLPattern = regexp.MustCompile(`github\.com/([a-zA-Z0-9-]+)`)

// Fallback is the deterministic last strategy: a known-company table scan,
// then a profile URL search. It needs no network and anchors the cascade.
type Fallback struct{}

// NewFallback constructs the deterministic fallback strategy.
func NewFallback() *Fallback { return &Fallback{} }

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) Extract(_ context.Context, text string) (string, error) {
	lower := strings.ToLower(text)
	for _, entry := range knownCompanies {
		if strings.Contains(lower, entry.mention) {
			return entry.handle, nil
		}
	}

	if match := profileURLPattern.FindStringSubmatch(text); match != nil {
		return match[1], nil
	}

	return "", nil
}
