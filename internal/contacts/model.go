package contacts

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusReviewed Status = "reviewed"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewed, StatusArchived:
		return true
	}
	return false
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when no contact exists for the requested id.
var ErrNotFound = errors.New("contact not found")

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	messageMinLen = 10
	messageMaxLen = 2000
	phoneMaxLen   = 20
)

var (
	emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-\s]+$`)
)

// Input is the public contact-form payload.
type Input struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Normalize trims every field and lowercases the email.
func (in *Input) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
}

func (in *Input) Validate() error {
	fields := map[string]string{}

	if in.Email == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(in.Email) {
		fields["email"] = "please enter a valid email"
	}

	if in.Phone != "" {
		if len(in.Phone) > phoneMaxLen {
			fields["phone"] = "phone number too long"
		} else if !phonePattern.MatchString(in.Phone) {
			fields["phone"] = "phone number contains invalid characters"
		}
	}

	switch {
	case in.Message == "":
		fields["message"] = "message is required"
	case len(in.Message) < messageMinLen:
		fields["message"] = fmt.Sprintf("message must be at least %d characters", messageMinLen)
	case len(in.Message) > messageMaxLen:
		fields["message"] = fmt.Sprintf("message cannot exceed %d characters", messageMaxLen)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
