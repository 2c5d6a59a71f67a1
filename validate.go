package ideaboard

import (
	"unicode/utf8"
)

// Field length bounds, counted in runes.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	DomainMaxLen      = 50
	AuthorNameMinLen  = 2
	AuthorNameMaxLen  = 50
)

// ValidateCreate checks a creation input against the field constraints and
// returns a ValidationError for the first failing field.
func ValidateCreate(input CreateIdeaInput) error {
	if err := validateTitle(input.Title); err != nil {
		return err
	}
	if err := validateDescription(input.Description); err != nil {
		return err
	}
	if input.Domain != nil {
		if err := validateDomain(*input.Domain); err != nil {
			return err
		}
	}
	return validateAuthorName(input.AuthorName)
}

// ValidateUpdate checks the supplied fields of a partial edit. Nil fields
// are skipped; supplied fields obey the same constraints as creation.
func ValidateUpdate(input UpdateIdeaInput) error {
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return err
		}
	}
	if input.Domain != nil {
		if err := validateDomain(*input.Domain); err != nil {
			return err
		}
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < TitleMinLen {
		return ValidationError{Field: "title", Reason: "must be at least 3 characters"}
	}
	if n > TitleMaxLen {
		return ValidationError{Field: "title", Reason: "too long"}
	}
	return nil
}

func validateDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n < DescriptionMinLen {
		return ValidationError{Field: "description", Reason: "must be at least 10 characters"}
	}
	if n > DescriptionMaxLen {
		return ValidationError{Field: "description", Reason: "too long"}
	}
	return nil
}

func validateDomain(domain string) error {
	if utf8.RuneCountInString(domain) > DomainMaxLen {
		return ValidationError{Field: "domain", Reason: "too long"}
	}
	return nil
}

func validateAuthorName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < AuthorNameMinLen {
		return ValidationError{Field: "authorName", Reason: "must be at least 2 characters"}
	}
	if n > AuthorNameMaxLen {
		return ValidationError{Field: "authorName", Reason: "too long"}
	}
	return nil
}
