package config

import "github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"

// Budget keys, one per bounded context field
const (
	BudgetOrgStructure   = "org_structure"
	BudgetKPIData        = "kpi_data"
	BudgetCompanyProfile = "company_profile"
	BudgetITSystems      = "it_systems"
	BudgetJSONSchema     = "json_schema"
)

// DefaultAliases maps common abbreviations and alternative spellings of
// department names to KPI department keys. Entries pointing at keys that are
// not present in the KPI directory are ignored by the mapper.
var DefaultAliases = []Alias{
	{Pattern: `(?i)^(дит|ит|it)(\s+(департамент|деп\.?|dept\.?|department))?$`, Department: "Департамент информационных технологий"},
	{Pattern: `(?i)^(it|information technology)\s+(dept\.?|department)$`, Department: "Department of Information Technology"},
	{Pattern: `(?i)^(дуп|hr|кадры|отдел кадров)$`, Department: "Департамент по управлению персоналом"},
	{Pattern: `(?i)^(дэф|финансы|finance)$`, Department: "Департамент экономики и финансов"},
	{Pattern: `(?i)^(юд|юр\.?\s*департамент|legal)$`, Department: "Юридический департамент"},
	{Pattern: `(?i)^(гд|генеральная дирекция)$`, Department: "Генеральная дирекция"},
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Paths: Paths{
			OrgStructure:   "data/structure.json",
			KPIDir:         "data/KPI",
			CompanyProfile: "data/company_profile.md",
			ITSystems:      "data/it_systems.md",
			ProfileSchema:  "schemas/job_profile.schema.json",
		},
		Matching: Matching{
			OrgThreshold:        0.8,
			DepartmentThreshold: 0.8,
			PositionThreshold:   0.8,
			UnitThreshold:       0.8,
		},
		KPI: KPI{
			CorporateKeywords: []string{"корпоратив", "общие", "corporate", "company"},
			PersonalKeywords:  []string{"личн", "индивидуал", "personal", "individual"},
			UnresolvedPolicy:  string(types.PolicyCorporateOnly),
		},
		Budgets: map[string]int{
			BudgetOrgStructure:   12000,
			BudgetKPIData:        16000,
			BudgetCompanyProfile: 40000,
			BudgetITSystems:      24000,
			BudgetJSONSchema:     30000,
		},
		Tokens: Tokens{
			CharsPerToken: 4,
		},
		DepartmentAliases: append([]Alias(nil), DefaultAliases...),
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		LLM: LLM{
			Tier:             "advanced",
			BatchConcurrency: 4,
		},
	}
}
