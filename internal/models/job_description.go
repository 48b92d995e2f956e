package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Qualifications struct {
	Education  string   `json:"education,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

type JobOtherInformation struct {
	BonusQualifications []string `json:"bonus_qualifications,omitempty"`
	SalaryRange         string   `json:"salary_range,omitempty"`
	Benefits            []string `json:"benefits,omitempty"`
}

// StructuredJobDescription is the extracted, structured form of a job posting.
type StructuredJobDescription struct {
	JobTitle                string              `json:"job_title"`
	CompanyName             string              `json:"company_name,omitempty"`
	Location                []string            `json:"location,omitempty"`
	EmploymentType          string              `json:"employment_type,omitempty"`
	LocationType            string              `json:"location_type,omitempty"`
	JobDuties               []string            `json:"job_duties,omitempty"`
	RequiredQualifications  Qualifications      `json:"required_qualifications"`
	PreferredQualifications Qualifications      `json:"preferred_qualifications"`
	OtherInformation        JobOtherInformation `json:"other_information"`
}

type JobDescription struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        string         `gorm:"type:text;not null;index" json:"user_id"`
	ExtractedData datatypes.JSON `gorm:"type:jsonb;not null" json:"extracted_data"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
