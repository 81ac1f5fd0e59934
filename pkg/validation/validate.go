package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rules holds the configurable bounds applied to new messages. Defaults
// mirror the classic board limits; config may override them.
type Rules struct {
	MaxSubjectLen int
}

// DefaultMaxSubjectLen bounds the subject line of a posted message.
const DefaultMaxSubjectLen = 32

var rules = Rules{MaxSubjectLen: DefaultMaxSubjectLen}

// SetRules installs the effective validation rules. Zero values fall back
// to the package defaults.
func SetRules(r Rules) {
	if r.MaxSubjectLen <= 0 {
		r.MaxSubjectLen = DefaultMaxSubjectLen
	}
	rules = r
}

// ValidateMessage checks the fields of a message about to be posted.
// Subject and body must be non-empty, the subject must fit the configured
// bound, and neither field may span lines (records are line-framed on disk).
func ValidateMessage(subject, body string) error {
	var errs []string
	if subject == "" {
		errs = append(errs, "subject is required")
	}
	if body == "" {
		errs = append(errs, "body is required")
	}
	// the bound is in characters, not bytes
	if n := utf8.RuneCountInString(subject); n > rules.MaxSubjectLen {
		errs = append(errs, fmt.Sprintf("subject too long: %d > %d", n, rules.MaxSubjectLen))
	}
	if strings.ContainsAny(subject, "\r\n") {
		errs = append(errs, "subject must be a single line")
	}
	if strings.ContainsAny(body, "\r\n") {
		errs = append(errs, "body must be a single line")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
