package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Education struct {
	Degree             string   `json:"degree"`
	Major              string   `json:"major"`
	School             string   `json:"school"`
	GraduationDate     string   `json:"graduation_date,omitempty"`
	GPA                *float64 `json:"gpa,omitempty"`
	RelevantCoursework []string `json:"relevant_coursework,omitempty"`
}

type Experience struct {
	Employer         string   `json:"employer"`
	Position         string   `json:"position"`
	Duration         float64  `json:"duration"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
	TechnologiesUsed []string `json:"technologies_used,omitempty"`
	TeamSizeManaged  int      `json:"team_size_managed,omitempty"`
}

type Internship struct {
	Company     string   `json:"company"`
	Title       string   `json:"title"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
	Outcomes    []string `json:"outcomes,omitempty"`
}

type Project struct {
	Name        string   `json:"name"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Description string   `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
	Role        string   `json:"role,omitempty"`
	Outcomes    []string `json:"outcomes,omitempty"`
}

type Certification struct {
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuing_organization,omitempty"`
	IssueDate           string `json:"issue_date,omitempty"`
	ExpirationDate      string `json:"expiration_date,omitempty"`
	CredentialID        string `json:"credential_id,omitempty"`
	CredentialURL       string `json:"credential_url,omitempty"`
}

type ResumeOtherInformation struct {
	AwardsAndAchievements   []string `json:"awards_and_achievements,omitempty"`
	ResearchAndPublications []string `json:"research_and_publications,omitempty"`
	Volunteering            []string `json:"volunteering,omitempty"`
	Leadership              string   `json:"leadership,omitempty"`
	SoftSkills              []string `json:"soft_skills,omitempty"`
	Languages               []string `json:"languages,omitempty"`
}

// StructuredResume is the extracted, structured form of a candidate résumé.
type StructuredResume struct {
	Summary            string                 `json:"summary,omitempty"`
	JobTitle           string                 `json:"job_title,omitempty"`
	ContactInformation map[string]string      `json:"contact_information,omitempty"`
	Education          []Education            `json:"education,omitempty"`
	Experience         []Experience           `json:"experience,omitempty"`
	Internships        []Internship           `json:"internships,omitempty"`
	Projects           []Project              `json:"projects,omitempty"`
	Certifications     []Certification        `json:"certifications,omitempty"`
	OtherInformation   ResumeOtherInformation `json:"other_information"`
	TechnicalSkills    []string               `json:"technical_skills,omitempty"`
}

type Resume struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        string         `gorm:"type:text;not null;index" json:"user_id"`
	ExtractedData datatypes.JSON `gorm:"type:jsonb;not null" json:"extracted_data"`
	StoragePath   string         `gorm:"type:text" json:"storage_path,omitempty"`
	OriginalName  string         `gorm:"type:text" json:"original_name,omitempty"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}
