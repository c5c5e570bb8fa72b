// Package extract pulls email addresses and known password hints out of
// free-form text pasted by the user.
package extract

import (
	"regexp"
	"strings"

	"github.com/danhigham/mailstr/internal/domain"
)

var (
	emailScan  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	emailExact = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Emails returns the distinct valid email addresses found in text, in
// first-occurrence order. Candidates produced by the scan are re-validated
// against the anchored grammar; any that fail as a whole token are dropped.
func Emails(text string) []string {
	matches := emailScan.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if !emailExact.MatchString(m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// DetectPassword scans text against the ordered pattern table. Triggers are
// matched as case-insensitive substrings; the first pattern that hits wins
// and evaluation stops. Returns false when no trigger is present.
func DetectPassword(text string, patterns []domain.PasswordPattern) (domain.Credential, bool) {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if p.Trigger == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p.Trigger)) {
			return domain.Credential{
				PrimePass: p.PrimePass,
				MailPass:  p.MailPass,
			}, true
		}
	}
	return domain.Credential{}, false
}
