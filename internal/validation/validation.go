package validation

import (
	"fmt"
	"regexp"
	"strings"

	"sternwerk/internal/models"
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks that an email address is plausible
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks a display name for children and parents
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return &ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if len(trimmed) > 100 {
		return &ValidationError{Field: "name", Message: "name must be at most 100 characters"}
	}
	return nil
}

// ValidateGrade checks a school grade (1 through 4)
func ValidateGrade(grade int) error {
	if grade < 1 || grade > 4 {
		return &ValidationError{Field: "grade", Message: "grade must be between 1 and 4"}
	}
	return nil
}

// ValidateTitle checks a task, note or wish title
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(trimmed) > 200 {
		return &ValidationError{Field: "title", Message: "title must be at most 200 characters"}
	}
	return nil
}

// ValidateStarPrice checks the star price of a wish
func ValidateStarPrice(price int) error {
	if price < 1 {
		return &ValidationError{Field: "starPrice", Message: "star price must be positive"}
	}
	return nil
}

// ValidateStarsAwarded checks the reward attached to a task
func ValidateStarsAwarded(stars int) error {
	if stars < 1 {
		return &ValidationError{Field: "starsAwarded", Message: "stars awarded must be positive"}
	}
	return nil
}

// ValidateSubject checks a school subject key
func ValidateSubject(subject models.SubjectType) error {
	for _, s := range models.ValidSubjects {
		if s == subject {
			return nil
		}
	}
	return &ValidationError{Field: "subject", Message: fmt.Sprintf("unknown subject %q", subject)}
}

// ValidateTheme checks a UI theme key
func ValidateTheme(theme models.ThemeName) error {
	for _, t := range models.ValidThemes {
		if t == theme {
			return nil
		}
	}
	return &ValidationError{Field: "theme", Message: fmt.Sprintf("unknown theme %q", theme)}
}

// ValidateEventCategory checks a calendar event category
func ValidateEventCategory(category models.EventCategory) error {
	for _, c := range models.ValidEventCategories {
		if c == category {
			return nil
		}
	}
	return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
}
