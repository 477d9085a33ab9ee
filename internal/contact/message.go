// Package contact delivers messages from the contact form through an email
// relay, SMTP, or a mailto: link, and tracks the form's submit state.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// DefaultSubject is used when the sender leaves the subject empty.
const DefaultSubject = "Portfolio Contact"

var ErrInvalidMessage = errors.New("invalid message")

// Message is what the visitor typed into the form.
type Message struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// SubjectOrDefault returns the subject, falling back to DefaultSubject.
func (m Message) SubjectOrDefault() string {
	if s := strings.TrimSpace(m.Subject); s != "" {
		return s
	}
	return DefaultSubject
}

// Body is the plain-text body used by the mailto and SMTP paths.
func (m Message) Body() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", m.Name, m.Email, m.Message)
}

// Validate checks required fields and the sender address.
func (m Message) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		problems = append(problems, "email is required")
	} else if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != strings.TrimSpace(m.Email) {
		problems = append(problems, "email is not a valid address")
	}
	if strings.TrimSpace(m.Message) == "" {
		problems = append(problems, "message is required")
	}
	for _, f := range []string{m.Name, m.Email, m.Subject} {
		if strings.ContainsAny(f, "\r\n") {
			problems = append(problems, "single-line fields must not contain line breaks")
			break
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, strings.Join(problems, "; "))
	}
	return nil
}

// encodeComponent escapes s for use inside a URL query value, with spaces
// as %20 rather than '+', which mail clients do not decode.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// MailtoURL builds the fallback link that opens the visitor's mail client.
func MailtoURL(to string, m Message) string {
	return "mailto:" + to +
		"?subject=" + encodeComponent(m.SubjectOrDefault()) +
		"&body=" + encodeComponent(m.Body())
}
