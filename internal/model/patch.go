package model

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state patch value: unset (key absent), set to null
// (explicit clear), or set to a value. A plain pointer cannot tell the
// first two apart, which is exactly the distinction partial updates
// depend on.
type Field[T any] struct {
	set   bool
	value *T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] { return Field[T]{set: true, value: &v} }

// Null returns a Field that clears the target attribute.
func Null[T any]() Field[T] { return Field[T]{set: true} }

// IsSet reports whether the field was supplied at all.
func (f Field[T]) IsSet() bool { return f.set }

// IsNull reports whether the field was supplied as an explicit null.
func (f Field[T]) IsNull() bool { return f.set && f.value == nil }

// Get returns the carried value and whether a non-null value is present.
func (f Field[T]) Get() (T, bool) {
	if f.value == nil {
		var zero T
		return zero, false
	}
	return *f.value, true
}

// Ptr returns the carried value as a pointer, nil when unset or null.
func (f Field[T]) Ptr() *T { return f.value }

// IsZero makes the zero (unset) Field cooperate with the json
// "omitzero" option so unset fields stay off the wire.
func (f Field[T]) IsZero() bool { return !f.set }

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.set = true
	if bytes.Equal(b, []byte("null")) {
		f.value = nil
		return nil
	}
	f.value = new(T)
	return json.Unmarshal(b, f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.value)
}

// CVPatch is a sparse partial update of a CV. Absent fields leave the
// stored attribute untouched; present fields replace it wholesale,
// sequence sections included.
type CVPatch struct {
	FullName Field[string] `json:"fullName,omitzero"`
	Email    Field[string] `json:"email,omitzero"`
	Phone    Field[string] `json:"phone,omitzero"`
	Address  Field[string] `json:"address,omitzero"`
	LinkedIn Field[string] `json:"linkedin,omitzero"`
	GitHub   Field[string] `json:"github,omitzero"`
	Website  Field[string] `json:"website,omitzero"`
	Summary  Field[string] `json:"summary,omitzero"`

	Experience     Field[[]Experience]    `json:"experience,omitzero"`
	Education      Field[[]Education]     `json:"education,omitzero"`
	Skills         Field[[]string]        `json:"skills,omitzero"`
	Languages      Field[[]Language]      `json:"languages,omitzero"`
	Certifications Field[[]Certification] `json:"certifications,omitzero"`
	Projects       Field[[]Project]       `json:"projects,omitzero"`
	References     Field[[]Reference]     `json:"references,omitzero"`
}

// IsEmpty reports whether the patch names no fields at all.
func (p CVPatch) IsEmpty() bool {
	return !p.FullName.IsSet() && !p.Email.IsSet() && !p.Phone.IsSet() &&
		!p.Address.IsSet() && !p.LinkedIn.IsSet() && !p.GitHub.IsSet() &&
		!p.Website.IsSet() && !p.Summary.IsSet() && !p.Experience.IsSet() &&
		!p.Education.IsSet() && !p.Skills.IsSet() && !p.Languages.IsSet() &&
		!p.Certifications.IsSet() && !p.Projects.IsSet() && !p.References.IsSet()
}
