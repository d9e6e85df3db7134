package model

import "time"

// User represents an account in the system.
type User struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	DisplayName  *string   `json:"displayName,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// CV is the résumé aggregate owned by exactly one user. Every attribute
// except the identity fields and timestamps is independently optional.
type CV struct {
	CVID   string `json:"cvId"`
	UserID string `json:"userId"`

	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	GitHub   *string `json:"github,omitempty"`
	Website  *string `json:"website,omitempty"`
	Summary  *string `json:"summary,omitempty"`

	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
	References     []Reference     `json:"references,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Experience is one position held at one company.
type Experience struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type Education struct {
	Institution  string  `json:"institution"`
	Degree       string  `json:"degree"`
	FieldOfStudy string  `json:"fieldOfStudy"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate,omitempty"`
	Grade        *string `json:"grade,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// Language pairs a language with a proficiency level such as
// "Native", "Fluent", "Intermediate" or "Basic".
type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

type Certification struct {
	Name                string  `json:"name"`
	IssuingOrganization string  `json:"issuingOrganization"`
	IssueDate           string  `json:"issueDate"`
	ExpiryDate          *string `json:"expiryDate,omitempty"`
	CredentialID        *string `json:"credentialId,omitempty"`
	CredentialURL       *string `json:"credentialUrl,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	StartDate    *string  `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate,omitempty"`
	URL          *string  `json:"url,omitempty"`
}

type Reference struct {
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Company  string  `json:"company"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}
