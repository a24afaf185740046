// Package types provides type definitions for structured data used throughout the profile generator.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobProfile is the structured job profile returned by generation
type JobProfile struct {
	PositionTitle         string                 `json:"position_title"`
	DepartmentBroad       string                 `json:"department_broad"`
	DepartmentSpecific    string                 `json:"department_specific"`
	Category              string                 `json:"category,omitempty"`
	DirectManager         string                 `json:"direct_manager,omitempty"`
	Subordinates          *Subordinates          `json:"subordinates,omitempty"`
	PrimaryActivityType   string                 `json:"primary_activity_type,omitempty"`
	ResponsibilityAreas   []ResponsibilityArea   `json:"responsibility_areas"`
	ProfessionalSkills    []SkillCategory        `json:"professional_skills"`
	CorporateCompetencies []string               `json:"corporate_competencies,omitempty"`
	PersonalQualities     []string               `json:"personal_qualities,omitempty"`
	Education             *Education             `json:"education,omitempty"`
	Careerogram           *Careerogram           `json:"careerogram,omitempty"`
	WorkplaceProvisioning *WorkplaceProvisioning `json:"workplace_provisioning,omitempty"`
	PerformanceMetrics    *PerformanceMetrics    `json:"performance_metrics,omitempty"`
}

// Subordinates summarises the team managed by the position
type Subordinates struct {
	Departments   int `json:"departments"`
	DirectReports int `json:"direct_reports"`
}

// ResponsibilityArea groups tasks under one area of responsibility
type ResponsibilityArea struct {
	Title string   `json:"title"`
	Tasks []string `json:"tasks"`
}

// SkillCategory groups professional skills
type SkillCategory struct {
	Category string  `json:"skill_category"`
	Skills   []Skill `json:"specific_skills"`
}

// Skill is a single professional skill with its expected proficiency
type Skill struct {
	Name        string `json:"skill_name"`
	Level       int    `json:"proficiency_level"`
	Description string `json:"proficiency_description,omitempty"`
}

// Education lists formal requirements
type Education struct {
	Level           string   `json:"education_level"`
	Specialties     []string `json:"specialties,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
}

// Careerogram describes inbound and outbound career moves
type Careerogram struct {
	SourcePositions []string `json:"source_positions,omitempty"`
	TargetPositions []string `json:"target_positions,omitempty"`
}

// WorkplaceProvisioning lists the systems and equipment the position uses
type WorkplaceProvisioning struct {
	Software []string `json:"software,omitempty"`
	Hardware []string `json:"hardware,omitempty"`
}

// PerformanceMetrics lists the KPIs the position is measured by
type PerformanceMetrics struct {
	QuantitativeKPIs      []string `json:"quantitative_kpis,omitempty"`
	QualitativeIndicators []string `json:"qualitative_indicators,omitempty"`
}
