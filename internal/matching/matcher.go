// Package matching compares a structured résumé against a structured job
// description across five fixed categories and turns the result into a
// weighted fit score.
package matching

import (
	"strings"

	"alfredoptarigan/resalign/internal/models"
)

type Category string

const (
	SkillsMatch                Category = "skills_match"
	ExperienceAlignment        Category = "experience_alignment"
	EducationAndCertifications Category = "education_and_certifications"
	AchievementsAndOutcomes    Category = "achievements_and_outcomes"
	SoftSkillsAndCulture       Category = "soft_skills_and_culture"
)

// Categories lists every category in report order.
var Categories = []Category{
	SkillsMatch,
	ExperienceAlignment,
	EducationAndCertifications,
	AchievementsAndOutcomes,
	SoftSkillsAndCulture,
}

type ExperienceDetail struct {
	YearsExperience float64  `json:"years_experience"`
	YearsRequired   int      `json:"years_required"`
	YearsPreferred  int      `json:"years_preferred"`
	MeetsMinimum    bool     `json:"meets_minimum"`
	MeetsPreferred  bool     `json:"meets_preferred"`
	RelevantRoles   []string `json:"relevant_roles"`
}

type EducationDetail struct {
	ResumeDegreeLevels    []string `json:"resume_degree_levels"`
	RequiredDegreeLevel   string   `json:"required_degree_level,omitempty"`
	DegreeMatch           bool     `json:"degree_match"`
	CertificationsMatched int      `json:"certifications_matched"`
	CertificationsCount   int      `json:"certifications_count"`
}

type AchievementDetail struct {
	AchievementsCount int `json:"achievements_count"`
}

type SoftSkillDetail struct {
	ResumeSoftSkillsCount int  `json:"resume_soft_skills_count"`
	HasLeadership         bool `json:"has_leadership"`
	HasTeamManagement     bool `json:"has_team_management"`
}

// MatchDetail is the comparison result for one category. Exactly one of the
// typed extensions is set, matching the category that produced it.
type MatchDetail struct {
	Matched         int      `json:"matched"`
	TotalRequired   int      `json:"total_required"`
	MatchPercentage float64  `json:"match_percentage"`
	MatchedItems    []string `json:"matched_items"`
	MissingRequired []string `json:"missing_required"`

	Experience  *ExperienceDetail  `json:"experience,omitempty"`
	Education   *EducationDetail   `json:"education,omitempty"`
	Achievement *AchievementDetail `json:"achievement,omitempty"`
	SoftSkill   *SoftSkillDetail   `json:"soft_skill,omitempty"`
}

type Matches map[Category]MatchDetail

var roleKeywords = []string{
	"engineer", "developer", "manager", "lead", "architect",
	"analyst", "designer", "consultant", "specialist", "scientist",
}

var certificationKeywords = []string{
	"aws", "azure", "gcp", "cissp", "ccna", "pmp", "scrum",
	"certified", "certification", "cpa", "cfa", "comptia",
}

var softSkillVocabulary = []string{
	"communication", "leadership", "teamwork", "collaboration",
	"problem solving", "analytical", "creative", "adaptable",
	"time management", "organized", "detail-oriented", "interpersonal",
	"presentation", "negotiation",
}

// CalculateMatches computes every category's MatchDetail. It is pure and safe
// for concurrent use.
func CalculateMatches(resume *models.StructuredResume, jd *models.StructuredJobDescription) Matches {
	return Matches{
		SkillsMatch:                matchSkills(resume, jd),
		ExperienceAlignment:        matchExperience(resume, jd),
		EducationAndCertifications: matchEducation(resume, jd),
		AchievementsAndOutcomes:    matchAchievements(resume, jd),
		SoftSkillsAndCulture:       matchSoftSkills(resume, jd),
	}
}

func newDetail(matched, total int, matchedItems, missing StringSet) MatchDetail {
	if total < 1 {
		total = 1
	}
	if matchedItems == nil {
		matchedItems = StringSet{}
	}
	if missing == nil {
		missing = StringSet{}
	}
	return MatchDetail{
		Matched:         matched,
		TotalRequired:   total,
		MatchPercentage: float64(matched) / float64(total) * 100,
		MatchedItems:    matchedItems.Sorted(),
		MissingRequired: missing.Sorted(),
	}
}

// ResumeSkills is the declared technical skills plus every technology named in
// experience, internship and project entries.
func ResumeSkills(resume *models.StructuredResume) StringSet {
	skills := NewStringSet(resume.TechnicalSkills...)
	for _, exp := range resume.Experience {
		skills.Add(exp.TechnologiesUsed...)
	}
	for _, in := range resume.Internships {
		skills.Add(in.TechStack...)
	}
	for _, p := range resume.Projects {
		skills.Add(p.TechStack...)
	}
	return skills
}

func matchSkills(resume *models.StructuredResume, jd *models.StructuredJobDescription) MatchDetail {
	have := ResumeSkills(resume)
	required := NewStringSet(jd.RequiredQualifications.Skills...)
	wanted := required.Union(NewStringSet(jd.PreferredQualifications.Skills...))

	matched := have.Intersect(wanted)
	return newDetail(matched.Len(), wanted.Len(), matched, required.Difference(have))
}

// TotalYears sums the duration of every experience entry.
func TotalYears(resume *models.StructuredResume) float64 {
	var total float64
	for _, exp := range resume.Experience {
		total += exp.Duration
	}
	return total
}

func matchExperience(resume *models.StructuredResume, jd *models.StructuredJobDescription) MatchDetail {
	years := TotalYears(resume)
	required := ParseYears(jd.RequiredQualifications.Experience)
	preferred := ParseYears(jd.PreferredQualifications.Experience)

	// A figure of zero means the posting sets no minimum.
	meetsRequired := required == 0 || years >= float64(required)
	meetsPreferred := preferred == 0 || years >= float64(preferred)

	titles := make([]string, 0, len(resume.Experience)+len(resume.Internships))
	for _, exp := range resume.Experience {
		titles = append(titles, strings.ToLower(exp.Position))
	}
	for _, in := range resume.Internships {
		titles = append(titles, strings.ToLower(in.Title))
	}

	dutyRoles := VocabularyIn(joinLower(jd.JobDuties...), roleKeywords)
	roles := make(StringSet)
	for role := range dutyRoles {
		for _, title := range titles {
			if strings.Contains(title, role) {
				roles[role] = struct{}{}
				break
			}
		}
	}

	matched := 0
	for _, ok := range []bool{meetsRequired, meetsPreferred, roles.Len() > 0} {
		if ok {
			matched++
		}
	}

	d := newDetail(matched, 3, roles, dutyRoles.Difference(roles))
	d.Experience = &ExperienceDetail{
		YearsExperience: years,
		YearsRequired:   required,
		YearsPreferred:  preferred,
		MeetsMinimum:    meetsRequired,
		MeetsPreferred:  meetsPreferred,
		RelevantRoles:   roles.Sorted(),
	}
	return d
}

func matchEducation(resume *models.StructuredResume, jd *models.StructuredJobDescription) MatchDetail {
	levels := make(StringSet)
	for _, edu := range resume.Education {
		levels[string(NormalizeDegree(edu.Degree))] = struct{}{}
	}

	requiredLevel := NormalizeDegree(jd.RequiredQualifications.Education)
	var degreeMatch bool
	if requiredLevel == DegreeOther {
		degreeMatch = len(resume.Education) > 0
	} else {
		_, degreeMatch = levels[string(requiredLevel)]
	}

	certNames := make([]string, 0, len(resume.Certifications))
	for _, c := range resume.Certifications {
		certNames = append(certNames, strings.ToLower(c.Name))
	}

	jdText := joinLower(
		jd.RequiredQualifications.Education,
		jd.PreferredQualifications.Education,
		strings.Join(jd.OtherInformation.BonusQualifications, " "),
	)
	wanted := VocabularyIn(jdText, certificationKeywords)
	certs := make(StringSet)
	for kw := range wanted {
		for _, name := range certNames {
			if strings.Contains(name, kw) {
				certs[kw] = struct{}{}
				break
			}
		}
	}

	matched := certs.Len()
	if degreeMatch {
		matched++
	}

	d := newDetail(matched, 1+wanted.Len(), certs, wanted.Difference(certs))
	required := ""
	if requiredLevel != DegreeOther {
		required = string(requiredLevel)
	}
	d.Education = &EducationDetail{
		ResumeDegreeLevels:    levels.Sorted(),
		RequiredDegreeLevel:   required,
		DegreeMatch:           degreeMatch,
		CertificationsMatched: certs.Len(),
		CertificationsCount:   len(resume.Certifications),
	}
	return d
}

// AchievementStatements pools experience achievements, internship and project
// outcomes, and awards.
func AchievementStatements(resume *models.StructuredResume) []string {
	var out []string
	for _, exp := range resume.Experience {
		out = append(out, exp.Achievements...)
	}
	for _, in := range resume.Internships {
		out = append(out, in.Outcomes...)
	}
	for _, p := range resume.Projects {
		out = append(out, p.Outcomes...)
	}
	return append(out, resume.OtherInformation.AwardsAndAchievements...)
}

func matchAchievements(resume *models.StructuredResume, jd *models.StructuredJobDescription) MatchDetail {
	statements := AchievementStatements(resume)
	have := Keywords(statements...)
	duties := Keywords(jd.JobDuties...)

	matched := have.Intersect(duties)
	d := newDetail(matched.Len(), duties.Len(), matched, nil)
	d.Achievement = &AchievementDetail{AchievementsCount: len(statements)}
	return d
}

func matchSoftSkills(resume *models.StructuredResume, jd *models.StructuredJobDescription) MatchDetail {
	have := NewStringSet(resume.OtherInformation.SoftSkills...)

	hasLeadership := strings.TrimSpace(resume.OtherInformation.Leadership) != ""
	hasTeam := false
	for _, exp := range resume.Experience {
		if exp.TeamSizeManaged > 0 {
			hasTeam = true
			break
		}
	}
	if hasLeadership || hasTeam {
		have.Add("leadership")
	}
	if hasTeam {
		have.Add("team management")
	}

	jdText := joinLower(
		strings.Join(jd.JobDuties, " "),
		jd.RequiredQualifications.Experience,
		jd.PreferredQualifications.Experience,
	)
	wanted := VocabularyIn(jdText, softSkillVocabulary)

	matched := have.Intersect(wanted)
	d := newDetail(matched.Len(), wanted.Len(), matched, wanted.Difference(have))
	d.SoftSkill = &SoftSkillDetail{
		ResumeSoftSkillsCount: have.Len(),
		HasLeadership:         hasLeadership || hasTeam,
		HasTeamManagement:     hasTeam,
	}
	return d
}
