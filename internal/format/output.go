// Package format renders the final text block handed back to the user.
package format

import (
	"fmt"
	"strings"

	"github.com/danhigham/mailstr/internal/domain"
)

// Output renders the deliverable block: a header line with the email count
// and template fields, the emails separated by single blank lines, then the
// password footer. Pure; identical inputs yield byte-identical output.
func Output(cfg domain.Config, emails []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%dx -- %s -- %s (%s)\n\n", len(emails), cfg.Prime, cfg.Validity, cfg.BinType)

	for i, email := range emails {
		b.WriteString(email)
		if i < len(emails)-1 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\npass- %s\nmail pass- %s", cfg.PrimePass, cfg.MailPass)

	return b.String()
}
