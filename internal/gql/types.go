package gql

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/husainf4l/rolekits/internal/model"
)

// Output types resolve by field name; the section records reuse the
// model structs directly since their shapes line up with the SDL.

type userOut struct {
	ID          graphql.ID
	Username    string
	DisplayName *string
}

func newUser(u *model.User) *userOut {
	return &userOut{ID: graphql.ID(u.UserID), Username: u.Username, DisplayName: u.DisplayName}
}

type cvOut struct {
	ID       graphql.ID
	UserID   graphql.ID
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
	LinkedIn *string
	GitHub   *string
	Website  *string
	Summary  *string

	Experience     *[]model.Experience
	Education      *[]model.Education
	Skills         *[]string
	Languages      *[]model.Language
	Certifications *[]model.Certification
	Projects       *[]model.Project
	References     *[]model.Reference

	CreatedAt graphql.Time
	UpdatedAt graphql.Time
}

func newCV(cv *model.CV) *cvOut {
	return &cvOut{
		ID:             graphql.ID(cv.CVID),
		UserID:         graphql.ID(cv.UserID),
		FullName:       cv.FullName,
		Email:          cv.Email,
		Phone:          cv.Phone,
		Address:        cv.Address,
		LinkedIn:       cv.LinkedIn,
		GitHub:         cv.GitHub,
		Website:        cv.Website,
		Summary:        cv.Summary,
		Experience:     &cv.Experience,
		Education:      &cv.Education,
		Skills:         &cv.Skills,
		Languages:      &cv.Languages,
		Certifications: &cv.Certifications,
		Projects:       &cv.Projects,
		References:     &cv.References,
		CreatedAt:      graphql.Time{Time: cv.CreatedAt},
		UpdatedAt:      graphql.Time{Time: cv.UpdatedAt},
	}
}

// CVInput is the sparse mutation payload. GraphQL input decoding does
// not distinguish an omitted field from an explicit null, so a non-nil
// value means "set"; clearing a field is only expressible over the REST
// PATCH surface.
type CVInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
	LinkedIn *string
	GitHub   *string
	Website  *string
	Summary  *string

	Experience     *[]model.Experience
	Education      *[]model.Education
	Skills         *[]string
	Languages      *[]model.Language
	Certifications *[]model.Certification
	Projects       *[]model.Project
	References     *[]model.Reference
}

func (in CVInput) toPatch() model.CVPatch {
	var p model.CVPatch
	if in.FullName != nil {
		p.FullName = model.Set(*in.FullName)
	}
	if in.Email != nil {
		p.Email = model.Set(*in.Email)
	}
	if in.Phone != nil {
		p.Phone = model.Set(*in.Phone)
	}
	if in.Address != nil {
		p.Address = model.Set(*in.Address)
	}
	if in.LinkedIn != nil {
		p.LinkedIn = model.Set(*in.LinkedIn)
	}
	if in.GitHub != nil {
		p.GitHub = model.Set(*in.GitHub)
	}
	if in.Website != nil {
		p.Website = model.Set(*in.Website)
	}
	if in.Summary != nil {
		p.Summary = model.Set(*in.Summary)
	}
	if in.Experience != nil {
		p.Experience = model.Set(*in.Experience)
	}
	if in.Education != nil {
		p.Education = model.Set(*in.Education)
	}
	if in.Skills != nil {
		p.Skills = model.Set(*in.Skills)
	}
	if in.Languages != nil {
		p.Languages = model.Set(*in.Languages)
	}
	if in.Certifications != nil {
		p.Certifications = model.Set(*in.Certifications)
	}
	if in.Projects != nil {
		p.Projects = model.Set(*in.Projects)
	}
	if in.References != nil {
		p.References = model.Set(*in.References)
	}
	return p
}
