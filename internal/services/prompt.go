package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
)

// maxResumeTextChars caps the converted résumé body sent with a prompt.
const maxResumeTextChars = 3000

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const rationaleSystemPrompt = `You are a career advisor who explains how well a candidate fits a specific job.
Be honest, specific and constructive. Ground every claim in the data you are given,
cover strengths and gaps, and write for a hiring manager.`

const recommendationSystemPrompt = `You are a résumé coach. You give concrete, actionable advice on résumé structure,
formatting, ATS compatibility and content, written directly to the candidate in the second person.
Prefer quantified, action-verb-led bullet points and advice tailored to the target job.`

const learningResourceSystemPrompt = `You are a learning advisor. You recommend real, currently available courses,
certifications, books and tutorials that close a candidate's skill gaps for a target job.
Only suggest resources you are confident exist, with working URLs.`

type resumeSummary struct {
	Name                 string   `json:"name"`
	CurrentTitle         string   `json:"current_title"`
	TotalExperienceYears float64  `json:"total_experience_years"`
	EducationLevel       string   `json:"education_level"`
	TechnicalSkills      []string `json:"technical_skills"`
	CertificationsCount  int      `json:"certifications_count"`
	ProjectsCount        int      `json:"projects_count"`
}

type jobSummary struct {
	JobTitle           string   `json:"job_title"`
	Company            string   `json:"company"`
	Location           []string `json:"location"`
	EmploymentType     string   `json:"employment_type"`
	LocationType       string   `json:"location_type"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredEducation  string   `json:"required_education"`
	RequiredExperience string   `json:"required_experience"`
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	if items == nil {
		return []string{}
	}
	return items
}

// summarizeResume keeps only non-identifying facts about the candidate.
func summarizeResume(r *models.StructuredResume) resumeSummary {
	education := "Not specified"
	if len(r.Education) > 0 {
		education = orDefault(r.Education[0].Degree, education)
	}
	return resumeSummary{
		Name:                 "[CANDIDATE_MASKED]",
		CurrentTitle:         orDefault(r.JobTitle, "Not specified"),
		TotalExperienceYears: matching.TotalYears(r),
		EducationLevel:       education,
		TechnicalSkills:      firstN(r.TechnicalSkills, 10),
		CertificationsCount:  len(r.Certifications),
		ProjectsCount:        len(r.Projects),
	}
}

func summarizeJob(jd *models.StructuredJobDescription) jobSummary {
	location := jd.Location
	if location == nil {
		location = []string{}
	}
	return jobSummary{
		JobTitle:           jd.JobTitle,
		Company:            jd.CompanyName,
		Location:           location,
		EmploymentType:     jd.EmploymentType,
		LocationType:       jd.LocationType,
		RequiredSkills:     firstN(jd.RequiredQualifications.Skills, 10),
		RequiredEducation:  orDefault(jd.RequiredQualifications.Education, "Not specified"),
		RequiredExperience: orDefault(jd.RequiredQualifications.Experience, "Not specified"),
	}
}

func toJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// formatCategoryDetails renders the per-category scores and match facts.
func formatCategoryDetails(in EnrichmentInput) string {
	var b strings.Builder
	scores := in.Scores.Categories

	skills := in.Matches[matching.SkillsMatch]
	fmt.Fprintf(&b, "1. Skills match: %.1f/100\n", scores[matching.SkillsMatch])
	fmt.Fprintf(&b, "   matched: %s\n   missing required: %s\n   %d of %d\n",
		listOrNone(skills.MatchedItems), listOrNone(skills.MissingRequired), skills.Matched, skills.TotalRequired)

	exp := in.Matches[matching.ExperienceAlignment]
	fmt.Fprintf(&b, "2. Experience alignment: %.1f/100\n", scores[matching.ExperienceAlignment])
	if d := exp.Experience; d != nil {
		fmt.Fprintf(&b, "   candidate years: %.1f, required: %d, preferred: %d, meets minimum: %s\n   relevant roles: %s\n",
			d.YearsExperience, d.YearsRequired, d.YearsPreferred, yesNo(d.MeetsMinimum), listOrNone(d.RelevantRoles))
	}

	edu := in.Matches[matching.EducationAndCertifications]
	fmt.Fprintf(&b, "3. Education and certifications: %.1f/100\n", scores[matching.EducationAndCertifications])
	if d := edu.Education; d != nil {
		fmt.Fprintf(&b, "   degree match: %s, certifications matched: %d of %d held\n",
			yesNo(d.DegreeMatch), d.CertificationsMatched, d.CertificationsCount)
	}

	ach := in.Matches[matching.AchievementsAndOutcomes]
	fmt.Fprintf(&b, "4. Achievements and outcomes: %.1f/100\n", scores[matching.AchievementsAndOutcomes])
	if d := ach.Achievement; d != nil {
		fmt.Fprintf(&b, "   achievements listed: %d, keywords shared with duties: %s\n",
			d.AchievementsCount, listOrNone(ach.MatchedItems))
	}

	soft := in.Matches[matching.SoftSkillsAndCulture]
	fmt.Fprintf(&b, "5. Soft skills and culture: %.1f/100\n", scores[matching.SoftSkillsAndCulture])
	if d := soft.SoftSkill; d != nil {
		fmt.Fprintf(&b, "   matched: %s, leadership: %s, team management: %s\n",
			listOrNone(soft.MatchedItems), yesNo(d.HasLeadership), yesNo(d.HasTeamManagement))
	}

	return b.String()
}

const scoringMethod = `Scoring: skills 35%, experience 25%, education and certifications 20%,
achievements 10%, soft skills 10%. GOOD_FIT is 80 or above, PARTIAL_FIT is 60 to 79, NOT_FIT is below 60.`

// BuildRationalePrompt creates the prompt explaining the candidate's fit classification.
func (pb *PromptBuilder) BuildRationalePrompt(in EnrichmentInput) TextRequest {
	prompt := fmt.Sprintf(`%s

CANDIDATE:
%s

JOB:
%s

CATEGORY RESULTS:
%s
Overall score: %.1f/100
Classification: %s

Write a 300-500 word rationale explaining why this candidate is %s for the role.
Open with a clear verdict, then cover the two or three strongest areas with concrete evidence,
the most important gaps in priority order, any compensating factors, and close with a hiring
recommendation. Do not repeat the numeric scores. Return plain text only.`,
		scoringMethod,
		toJSON(summarizeResume(in.Resume)),
		toJSON(summarizeJob(in.JobDescription)),
		formatCategoryDetails(in),
		in.Scores.Overall, in.Classification, in.Classification)

	return TextRequest{System: rationaleSystemPrompt, Prompt: prompt, Temperature: 0.4}
}

// BuildRecommendationPrompt creates the prompt for résumé improvement advice.
func (pb *PromptBuilder) BuildRecommendationPrompt(in EnrichmentInput) TextRequest {
	resumeText := strings.TrimSpace(MaskPII(in.ResumeText))
	if resumeText == "" {
		resumeText = "Original résumé text is not available; rely on the structured summary."
	} else if r := []rune(resumeText); len(r) > maxResumeTextChars {
		resumeText = string(r[:maxResumeTextChars]) + "..."
	}

	prompt := fmt.Sprintf(`TARGET JOB:
%s

CANDIDATE SUMMARY:
%s

RÉSUMÉ TEXT:
%s

FIT ASSESSMENT (%s, %.1f/100):
%s

CATEGORY RESULTS:
%s
Give 5 to 8 recommendations to improve this résumé for the target job. Each must be one or two
sentences, start with "You should" or an imperative verb, and reference specific content from the résumé
or the job. Cover section order, formatting, quantified impact and keyword alignment where relevant.

Return a JSON array of strings and nothing else.`,
		toJSON(summarizeJob(in.JobDescription)),
		toJSON(summarizeResume(in.Resume)),
		resumeText,
		in.Classification, in.Scores.Overall,
		orDefault(in.Rationale, "No rationale available."),
		formatCategoryDetails(in))

	return TextRequest{System: recommendationSystemPrompt, Prompt: prompt, Temperature: 0.5, JSON: true}
}

// BuildLearningResourcePrompt creates the prompt for curated learning resources.
func (pb *PromptBuilder) BuildLearningResourcePrompt(in EnrichmentInput, gaps []string, catalogContext string) TextRequest {
	gapLines := "- No major gaps; suggest resources for growth in the role."
	if len(gaps) > 0 {
		gapLines = "- " + strings.Join(gaps, "\n- ")
	}

	prompt := fmt.Sprintf(`TARGET JOB:
%s

CANDIDATE SUMMARY:
%s

SKILL GAPS:
%s

CURATED CATALOG MATCHES (prefer these when relevant):
%s

Recommend 3 to 5 learning resources that close the most important gaps.
Return a JSON array where every element has exactly these fields:
{"title": string, "description": string written to the candidate, "category": one of
"technical_skills" | "certifications" | "soft_skills" | "domain_knowledge", "resource_type": one of
"course" | "certification" | "book" | "tutorial" | "project", "url": string, "estimated_hours": integer}`,
		toJSON(summarizeJob(in.JobDescription)),
		toJSON(summarizeResume(in.Resume)),
		gapLines,
		catalogContext)

	return TextRequest{System: learningResourceSystemPrompt, Prompt: prompt, Temperature: 0.3, JSON: true}
}

// BuildCatalogQuery turns skill gaps into a retrieval query for the catalog.
func (pb *PromptBuilder) BuildCatalogQuery(jobTitle string, gaps []string) string {
	return fmt.Sprintf("Learning resources for a %s role covering: %s", orDefault(jobTitle, "professional"), strings.Join(gaps, "; "))
}

// FormatCatalogContext renders catalog search results for a prompt.
func FormatCatalogContext(entries []CatalogEntry) string {
	if len(entries) == 0 {
		return "No relevant catalog entries found."
	}

	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		parts = append(parts, fmt.Sprintf("--- Entry %d (%s, score %.2f) ---\n%s\nURL: %s\n%s",
			i+1, orDefault(e.Category, "general"), e.Score, e.Title, orDefault(e.URL, "n/a"), strings.TrimSpace(e.Text)))
	}

	return strings.Join(parts, "\n\n")
}
