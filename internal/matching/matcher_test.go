package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resalign/internal/models"
)

func sampleResume() *models.StructuredResume {
	return &models.StructuredResume{
		JobTitle:        "Backend Engineer",
		TechnicalSkills: []string{" Python ", "React"},
		Education: []models.Education{
			{Degree: "B.S. in Computer Science", School: "State University"},
		},
		Experience: []models.Experience{
			{
				Employer:         "Acme",
				Position:         "Senior Software Engineer",
				Duration:         3,
				Achievements:     []string{"Reduced API latency by 40% across payment services"},
				TechnologiesUsed: []string{"Go", "PostgreSQL"},
				TeamSizeManaged:  4,
			},
			{
				Employer: "Initech",
				Position: "Developer",
				Duration: 2,
			},
		},
		Projects: []models.Project{
			{Name: "tracker", TechStack: []string{"docker"}, Outcomes: []string{"Deployed services to production"}},
		},
		Certifications: []models.Certification{
			{Name: "AWS Certified Solutions Architect"},
		},
		OtherInformation: models.ResumeOtherInformation{
			SoftSkills:            []string{"Communication", "teamwork"},
			AwardsAndAchievements: []string{"Hackathon winner"},
		},
	}
}

func sampleJD() *models.StructuredJobDescription {
	return &models.StructuredJobDescription{
		JobTitle: "Software Engineer",
		JobDuties: []string{
			"Design and build payment services as a software engineer",
			"Strong communication and collaboration with product teams",
		},
		RequiredQualifications: models.Qualifications{
			Education:  "Bachelor's degree in Computer Science",
			Experience: "3+ years of backend experience",
			Skills:     []string{"Python", "AWS"},
		},
		PreferredQualifications: models.Qualifications{
			Experience: "5 years building distributed systems, leadership a plus",
			Skills:     []string{"react"},
		},
		OtherInformation: models.JobOtherInformation{
			BonusQualifications: []string{"AWS certification"},
		},
	}
}

func TestMatchSkills_UnionOfRequiredAndPreferred(t *testing.T) {
	resume := &models.StructuredResume{TechnicalSkills: []string{"python", "react"}}
	jd := &models.StructuredJobDescription{
		RequiredQualifications:  models.Qualifications{Skills: []string{"python", "aws"}},
		PreferredQualifications: models.Qualifications{Skills: []string{"react"}},
	}

	d := CalculateMatches(resume, jd)[SkillsMatch]

	assert.Equal(t, 2, d.Matched)
	assert.Equal(t, 3, d.TotalRequired)
	assert.InDelta(t, 66.666, d.MatchPercentage, 0.01)
	assert.Equal(t, []string{"python", "react"}, d.MatchedItems)
	assert.Equal(t, []string{"aws"}, d.MissingRequired)
}

func TestMatchSkills_CollectsTechnologiesFromEveryEntry(t *testing.T) {
	d := CalculateMatches(sampleResume(), &models.StructuredJobDescription{
		RequiredQualifications: models.Qualifications{Skills: []string{"GO", "Docker", "kafka"}},
	})[SkillsMatch]

	assert.Equal(t, []string{"docker", "go"}, d.MatchedItems)
	assert.Equal(t, []string{"kafka"}, d.MissingRequired)
}

func TestMatchSkills_EmptyPostingFloorsTotal(t *testing.T) {
	d := CalculateMatches(sampleResume(), &models.StructuredJobDescription{})[SkillsMatch]

	assert.Equal(t, 0, d.Matched)
	assert.Equal(t, 1, d.TotalRequired)
	assert.Equal(t, 0.0, d.MatchPercentage)
	assert.NotNil(t, d.MatchedItems)
	assert.NotNil(t, d.MissingRequired)
}

func TestMatchExperience_AllCriteriaMet(t *testing.T) {
	resume := &models.StructuredResume{
		Experience: []models.Experience{
			{Position: "Software Engineer", Duration: 2.5},
			{Position: "Engineer II", Duration: 2.5},
		},
	}
	jd := &models.StructuredJobDescription{
		JobDuties:               []string{"Work as an engineer on the platform team"},
		RequiredQualifications:  models.Qualifications{Experience: "3+ years"},
		PreferredQualifications: models.Qualifications{Experience: "5 years"},
	}

	d := CalculateMatches(resume, jd)[ExperienceAlignment]

	assert.Equal(t, 3, d.Matched)
	assert.Equal(t, 3, d.TotalRequired)
	assert.Equal(t, 100.0, d.MatchPercentage)
	require.NotNil(t, d.Experience)
	assert.Equal(t, 5.0, d.Experience.YearsExperience)
	assert.Equal(t, 3, d.Experience.YearsRequired)
	assert.Equal(t, 5, d.Experience.YearsPreferred)
	assert.True(t, d.Experience.MeetsMinimum)
	assert.Equal(t, []string{"engineer"}, d.Experience.RelevantRoles)
	assert.Nil(t, d.Education)
}

func TestMatchExperience_ShortfallAndNoRoles(t *testing.T) {
	resume := &models.StructuredResume{
		Experience: []models.Experience{{Position: "Barista", Duration: 1}},
	}
	jd := &models.StructuredJobDescription{
		JobDuties:               []string{"Act as the lead analyst"},
		RequiredQualifications:  models.Qualifications{Experience: "2 yrs minimum"},
		PreferredQualifications: models.Qualifications{Experience: "no figure given"},
	}

	d := CalculateMatches(resume, jd)[ExperienceAlignment]

	// Only the absent preferred figure counts as met.
	assert.Equal(t, 1, d.Matched)
	assert.False(t, d.Experience.MeetsMinimum)
	assert.True(t, d.Experience.MeetsPreferred)
	assert.Empty(t, d.Experience.RelevantRoles)
	assert.Equal(t, []string{"analyst", "lead"}, d.MissingRequired)
}

func TestMatchExperience_InternshipTitlesCount(t *testing.T) {
	resume := &models.StructuredResume{
		Internships: []models.Internship{{Title: "Data Scientist Intern"}},
	}
	jd := &models.StructuredJobDescription{JobDuties: []string{"Partner with our scientist group"}}

	d := CalculateMatches(resume, jd)[ExperienceAlignment]

	assert.Equal(t, []string{"scientist"}, d.MatchedItems)
	assert.Equal(t, 3, d.Matched)
}

func TestParseYears(t *testing.T) {
	cases := map[string]int{
		"3+ years of experience":   3,
		"at least 10 Years":        10,
		"2yrs in a similar role":   2,
		"1 year":                   1,
		"5-7 years":                7,
		"Experience with Go":       0,
		"":                         0,
		"7 + years":                0,
		"Requires 4+ yr of Python": 4,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseYears(text), text)
	}
}

func TestNormalizeDegree(t *testing.T) {
	cases := map[string]DegreeLevel{
		"Ph.D. in Physics":                DegreePhD,
		"Doctorate of Education":          DegreePhD,
		"Master of Science":               DegreeMasters,
		"MBA":                             DegreeMasters,
		"M.S. Computer Science":           DegreeMasters,
		"BS/MS in CS":                     DegreeMasters,
		"Bachelor's degree":               DegreeBachelors,
		"B.A. Economics":                  DegreeBachelors,
		"BSc Mathematics":                 DegreeBachelors,
		"Associate of Applied Science":    DegreeAssociate,
		"Mathematics coursework":          DegreeOther,
		"High school diploma":             DegreeOther,
		"Degree in a field such as maths": DegreeOther,
		"":                                DegreeOther,
	}
	for text, want := range cases {
		assert.Equal(t, want, NormalizeDegree(text), text)
	}
}

func TestMatchEducation_DegreeAndCertifications(t *testing.T) {
	d := CalculateMatches(sampleResume(), sampleJD())[EducationAndCertifications]

	require.NotNil(t, d.Education)
	assert.True(t, d.Education.DegreeMatch)
	assert.Equal(t, "bachelors", d.Education.RequiredDegreeLevel)
	assert.Equal(t, []string{"bachelors"}, d.Education.ResumeDegreeLevels)
	// "aws" and "certification" appear in the posting; only "aws" is in the cert name.
	assert.Equal(t, 3, d.TotalRequired)
	assert.Equal(t, 2, d.Matched)
	assert.Equal(t, 1, d.Education.CertificationsMatched)
	assert.Equal(t, 1, d.Education.CertificationsCount)
	assert.Equal(t, []string{"aws"}, d.MatchedItems)
	assert.Equal(t, []string{"certification"}, d.MissingRequired)
}

func TestMatchEducation_NoRequiredLevel(t *testing.T) {
	jd := &models.StructuredJobDescription{}

	withDegree := CalculateMatches(sampleResume(), jd)[EducationAndCertifications]
	assert.True(t, withDegree.Education.DegreeMatch)
	assert.Equal(t, 100.0, withDegree.MatchPercentage)

	withoutDegree := CalculateMatches(&models.StructuredResume{}, jd)[EducationAndCertifications]
	assert.False(t, withoutDegree.Education.DegreeMatch)
	assert.Equal(t, 0.0, withoutDegree.MatchPercentage)
}

func TestMatchEducation_HigherDegreeDoesNotSatisfyDifferentLevel(t *testing.T) {
	resume := &models.StructuredResume{Education: []models.Education{{Degree: "PhD"}}}
	jd := &models.StructuredJobDescription{
		RequiredQualifications: models.Qualifications{Education: "Bachelor's degree"},
	}

	d := CalculateMatches(resume, jd)[EducationAndCertifications]

	assert.False(t, d.Education.DegreeMatch)
}

func TestMatchAchievements(t *testing.T) {
	d := CalculateMatches(sampleResume(), sampleJD())[AchievementsAndOutcomes]

	require.NotNil(t, d.Achievement)
	assert.Equal(t, 3, d.Achievement.AchievementsCount)
	assert.Equal(t, []string{"payment", "services"}, d.MatchedItems)
	assert.Equal(t, Keywords(sampleJD().JobDuties...).Len(), d.TotalRequired)
}

func TestKeywords_DropsStopWordsAndShortWords(t *testing.T) {
	got := Keywords("The team and I shipped it with Go, for real")

	assert.Equal(t, []string{"real", "shipped", "team"}, got.Sorted())
}

func TestKeywords_DropsWordsWithNonASCIILettersOrDigits(t *testing.T) {
	got := Keywords("Coördinated naïve résumé café rollouts", "Scaled k8s and s3 via terraform2")

	assert.Equal(t, []string{"rollouts", "scaled", "via"}, got.Sorted())
}

func TestMatchSoftSkills(t *testing.T) {
	d := CalculateMatches(sampleResume(), sampleJD())[SoftSkillsAndCulture]

	require.NotNil(t, d.SoftSkill)
	assert.Equal(t, []string{"communication", "leadership"}, d.MatchedItems)
	assert.Equal(t, []string{"collaboration"}, d.MissingRequired)
	assert.Equal(t, 3, d.TotalRequired)
	assert.True(t, d.SoftSkill.HasTeamManagement)
	assert.True(t, d.SoftSkill.HasLeadership)
	// communication, teamwork, leadership, team management
	assert.Equal(t, 4, d.SoftSkill.ResumeSoftSkillsCount)
}

func TestMatchSoftSkills_LeadershipNarrative(t *testing.T) {
	resume := &models.StructuredResume{
		OtherInformation: models.ResumeOtherInformation{Leadership: "Captain of the robotics club"},
	}
	jd := &models.StructuredJobDescription{JobDuties: []string{"Show leadership"}}

	d := CalculateMatches(resume, jd)[SoftSkillsAndCulture]

	assert.Equal(t, 100.0, d.MatchPercentage)
	assert.False(t, d.SoftSkill.HasTeamManagement)
}

func TestCalculateMatches_OrderInsensitive(t *testing.T) {
	a := sampleResume()
	b := sampleResume()
	b.TechnicalSkills = []string{"react", "PYTHON"}
	b.Experience[0], b.Experience[1] = b.Experience[1], b.Experience[0]

	assert.Equal(t, CalculateMatches(a, sampleJD()), CalculateMatches(b, sampleJD()))
}
