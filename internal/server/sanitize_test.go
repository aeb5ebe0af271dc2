package server

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"Annual Report 2025.pdf", "Annual_Report_2025.pdf"},
		{"../../etc/passwd.pdf", "passwd.pdf"},
		{`..\..\windows\system.pdf`, "system.pdf"},
		{"weird*chars?&.pdf", "weird_chars_.pdf"},
		{"...", "upload.pdf"},
		{"", "upload.pdf"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
