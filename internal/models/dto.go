package models

type AnalyzeRequest struct {
	ResumeID string `json:"resume_db_id" validate:"required,uuid"`
	JDID     string `json:"jd_db_id" validate:"required,uuid"`
}

type CreateJobDescriptionRequest struct {
	ExtractedData *StructuredJobDescription `json:"extracted_data" validate:"required"`
}

type DocumentResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	OriginalName string `json:"original_name,omitempty"`
	StoragePath  string `json:"storage_path,omitempty"`
}

type AnalysisResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	ResumeID     string  `json:"resume_db_id"`
	JDID         string  `json:"jd_db_id"`
	Report       *Report `json:"report,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}
