package projects

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	titleMaxLen       = 100
	descriptionMinLen = 50
	descriptionMaxLen = 2000
)

var urlPattern = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)

// CreateInput is the full field set required to create a project.
// RawImage, when non-empty, is transcoded before the record is committed.
type CreateInput struct {
	Title       string
	Description string
	Tags        []string
	Category    string
	Featured    bool
	GitHub      string
	Live        string
	RawImage    []byte
}

// UpdateInput is a partial update: nil pointer fields are left unchanged.
// Tags == nil means unchanged; an empty non-nil slice is invalid.
// RawImage and RemoveImage are mutually exclusive.
type UpdateInput struct {
	Title       *string
	Description *string
	Tags        []string
	Category    *string
	Featured    *bool
	GitHub      *string
	Live        *string
	RawImage    []byte
	RemoveImage bool
}

func (in *CreateInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Tags = cleanTags(in.Tags)
	in.GitHub = strings.TrimSpace(in.GitHub)
	in.Live = strings.TrimSpace(in.Live)
	if in.Category == "" {
		in.Category = string(CategoryWeb)
	}
}

func (in *CreateInput) validate() error {
	fields := map[string]string{}

	if msg := titleMessage(in.Title); msg != "" {
		fields["title"] = msg
	}
	if msg := descriptionMessage(in.Description); msg != "" {
		fields["description"] = msg
	}
	if len(in.Tags) == 0 {
		fields["tags"] = "at least one tag is required"
	}
	if !Category(in.Category).Valid() {
		fields["category"] = fmt.Sprintf("invalid category %q", in.Category)
	}
	if msg := urlMessage(in.GitHub); msg != "" {
		fields["github"] = msg
	}
	if msg := urlMessage(in.Live); msg != "" {
		fields["live"] = msg
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (in *UpdateInput) normalize() {
	if in.Title != nil {
		*in.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		*in.Description = strings.TrimSpace(*in.Description)
	}
	if in.Tags != nil {
		in.Tags = cleanTags(in.Tags)
	}
	if in.GitHub != nil {
		*in.GitHub = strings.TrimSpace(*in.GitHub)
	}
	if in.Live != nil {
		*in.Live = strings.TrimSpace(*in.Live)
	}
}

func (in *UpdateInput) validate() error {
	fields := map[string]string{}

	if in.Title != nil {
		if msg := titleMessage(*in.Title); msg != "" {
			fields["title"] = msg
		}
	}
	if in.Description != nil {
		if msg := descriptionMessage(*in.Description); msg != "" {
			fields["description"] = msg
		}
	}
	if in.Tags != nil && len(in.Tags) == 0 {
		fields["tags"] = "at least one tag is required"
	}
	if in.Category != nil && !Category(*in.Category).Valid() {
		fields["category"] = fmt.Sprintf("invalid category %q", *in.Category)
	}
	if in.GitHub != nil {
		if msg := urlMessage(*in.GitHub); msg != "" {
			fields["github"] = msg
		}
	}
	if in.Live != nil {
		if msg := urlMessage(*in.Live); msg != "" {
			fields["live"] = msg
		}
	}
	if len(in.RawImage) > 0 && in.RemoveImage {
		fields["image"] = "cannot replace and remove the image in the same request"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func titleMessage(title string) string {
	switch {
	case title == "":
		return "title is required"
	case len(title) > titleMaxLen:
		return fmt.Sprintf("title cannot exceed %d characters", titleMaxLen)
	}
	return ""
}

func descriptionMessage(description string) string {
	switch {
	case description == "":
		return "description is required"
	case len(description) < descriptionMinLen:
		return fmt.Sprintf("description should be at least %d characters", descriptionMinLen)
	case len(description) > descriptionMaxLen:
		return fmt.Sprintf("description cannot exceed %d characters", descriptionMaxLen)
	}
	return ""
}

func urlMessage(raw string) string {
	if raw == "" {
		return ""
	}
	if !urlPattern.MatchString(raw) {
		return "please enter a valid URL"
	}
	return ""
}

// SplitTags turns a comma-separated multipart field into a tag slice,
// trimming whitespace and dropping empty entries.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return cleanTags(strings.Split(raw, ","))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
