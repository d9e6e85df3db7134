// Package merge computes the next CV state from the current state and a
// sparse patch. It is the single merge path shared by REST handlers,
// GraphQL mutations and agent tool calls.
package merge

import (
	"time"

	"github.com/husainf4l/rolekits/internal/model"
)

// Apply returns a new CV with every field named by the patch replaced
// wholesale and every absent field carried over unchanged. UpdatedAt is
// stamped strictly after the current value so it can serve as the
// aggregate's ordering token. Apply never persists.
func Apply(current model.CV, patch model.CVPatch) model.CV {
	next := current

	applyScalar(&next.FullName, patch.FullName)
	applyScalar(&next.Email, patch.Email)
	applyScalar(&next.Phone, patch.Phone)
	applyScalar(&next.Address, patch.Address)
	applyScalar(&next.LinkedIn, patch.LinkedIn)
	applyScalar(&next.GitHub, patch.GitHub)
	applyScalar(&next.Website, patch.Website)
	applyScalar(&next.Summary, patch.Summary)

	applySection(&next.Experience, patch.Experience)
	applySection(&next.Education, patch.Education)
	applySection(&next.Skills, patch.Skills)
	applySection(&next.Languages, patch.Languages)
	applySection(&next.Certifications, patch.Certifications)
	applySection(&next.Projects, patch.Projects)
	applySection(&next.References, patch.References)

	next.UpdatedAt = stamp(current.UpdatedAt)
	return next
}

// applyScalar distinguishes unset (leave alone) from explicit null
// (clear) from a replacement value.
func applyScalar[T any](dst **T, f model.Field[T]) {
	if !f.IsSet() {
		return
	}
	*dst = f.Ptr()
}

// applySection replaces the whole sequence; there is no element-level
// merge. Null clears the section.
func applySection[T any](dst *[]T, f model.Field[[]T]) {
	if !f.IsSet() {
		return
	}
	if v, ok := f.Get(); ok {
		*dst = v
	} else {
		*dst = nil
	}
}

func stamp(prev time.Time) time.Time {
	// Microsecond precision matches what timestamptz columns retain, so
	// the version read back from the store compares equal to this one.
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		// Clock did not advance past the stored version; nudge so
		// updated_at stays strictly increasing.
		return prev.Add(time.Microsecond)
	}
	return now
}
