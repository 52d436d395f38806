// Package section contains the pure business logic for section operations.
// This is part of the Functional Core - no I/O, only pure functions.
package section

import (
	"fmt"

	"github.com/example/formcraft/internal/ports/secondary"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// DeleteContext provides context for section deletion guards.
type DeleteContext struct {
	QuestionnaireID string
	SectionID       string
}

// CanDeleteSection evaluates whether a section may be deleted.
// Rule: the reserved default section is permanent.
func CanDeleteSection(ctx DeleteContext) GuardResult {
	if ctx.SectionID == secondary.DefaultSectionID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("section %q is reserved and cannot be deleted", secondary.DefaultSectionID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCreateWithID evaluates whether a section may take the given ID on creation.
// Rule: nobody else may claim the reserved ID.
func CanCreateWithID(id string) GuardResult {
	if id == secondary.DefaultSectionID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("section id %q is reserved", secondary.DefaultSectionID),
		}
	}
	return GuardResult{Allowed: true}
}

// ResolveSectionID returns the section a control should land in.
// Empty or missing sections fall back to the default section.
func ResolveSectionID(requested string, exists bool) string {
	if requested == "" || !exists {
		return secondary.DefaultSectionID
	}
	return requested
}

// NextOrder returns the display order for a section appended after count sections.
func NextOrder(count int) int {
	return count
}
