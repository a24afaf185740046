package kpi

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/config"
)

var mapperKeys = []string{
	"Department of Information Technology",
	"Finance Department",
	"Департамент по управлению персоналом",
}

func TestFindKPIFile(t *testing.T) {
	m := NewMapper(mapperKeys, config.DefaultAliases, 0, nil)

	tests := []struct {
		name    string
		query   string
		key     string
		tier    MapTier
		matched string
	}{
		{name: "exact", query: "Finance Department", key: "Finance Department", tier: TierExact, matched: "Finance Department"},
		{name: "case insensitive", query: "finance department", key: "Finance Department", tier: TierExact, matched: "finance department"},
		{name: "alias", query: "IT Dept", key: itKeyMD, tier: TierAlias, matched: "IT Dept"},
		{name: "russian alias", query: "HR", key: "Департамент по управлению персоналом", tier: TierAlias, matched: "HR"},
		{name: "typo", query: "Department of Informaton Technology", key: itKeyMD, tier: TierFuzzy, matched: "Department of Informaton Technology"},
		{name: "path resolves deepest segment", query: "Operations Block / IT Dept", key: itKeyMD, tier: TierAlias, matched: "IT Dept"},
		{name: "path with exact segment", query: "Finance Department / Treasury", key: "Finance Department", tier: TierExact, matched: "Finance Department"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.FindKPIFile(tt.query)
			require.True(t, res.Found(), "suggestions: %v", res.Suggestions)
			assert.Equal(t, tt.key, res.Key)
			assert.Equal(t, tt.tier, res.Tier)
			assert.Equal(t, tt.matched, res.Matched)
			assert.Equal(t, tt.query, res.Query)
			if tt.tier == TierFuzzy {
				assert.Less(t, res.Score, 1.0)
				assert.GreaterOrEqual(t, res.Score, 0.8)
			} else {
				assert.Equal(t, 1.0, res.Score)
			}
		})
	}
}

func TestFindKPIFile_Unmatched(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := NewMapper(mapperKeys, config.DefaultAliases, 0, logger)

	res := m.FindKPIFile("Marketing")
	assert.False(t, res.Found())
	assert.Equal(t, TierUnmatched, res.Tier)
	assert.Empty(t, res.Key)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Marketing", entry.Data["department"])

	_, err := m.FindKPIFileErr("Marketing")
	assert.ErrorIs(t, err, ErrUnmatched)

	key, err := m.FindKPIFileErr("IT Department")
	require.NoError(t, err)
	assert.Equal(t, itKeyMD, key)

	assert.False(t, m.FindKPIFile("   ").Found())
}

func TestFindKPIFile_TieIsUnmatched(t *testing.T) {
	m := NewMapper([]string{"Dept A1", "Dept A2"}, nil, 0, nil)

	res := m.FindKPIFile("Dept A3")
	assert.False(t, res.Found())
	assert.ElementsMatch(t, []string{"Dept A1", "Dept A2"}, res.Suggestions)
}

func TestFindKPIFile_Threshold(t *testing.T) {
	strict := NewMapper(mapperKeys, nil, 0.99, nil)
	assert.False(t, strict.FindKPIFile("Department of Informaton Technology").Found())

	loose := NewMapper(mapperKeys, nil, 0.5, nil)
	assert.True(t, loose.FindKPIFile("Department of Informaton Technology").Found())
}

func TestNewMapper_Aliases(t *testing.T) {
	logger, hook := test.NewNullLogger()
	aliases := []config.Alias{
		{Pattern: `(?i)^fin$`, Department: "Finance Department"},
		{Pattern: `(?i)^ghost$`, Department: "Unknown Department"},
		{Pattern: `([`, Department: "Finance Department"},
	}
	m := NewMapper(append(mapperKeys, "Finance Department", ""), aliases, 0, logger)

	assert.Equal(t, []string{
		"Department of Information Technology",
		"Finance Department",
		"Департамент по управлению персоналом",
	}, m.Keys())

	assert.Equal(t, "Finance Department", m.FindKPIFile("FIN").Key)
	assert.False(t, m.FindKPIFile("ghost").Found())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["pattern"] == "([" {
			warned = true
		}
	}
	assert.True(t, warned, "invalid alias pattern should be logged")
}

func TestFindKPIFile_ExactBeatsAlias(t *testing.T) {
	aliases := []config.Alias{{Pattern: `(?i)^finance department$`, Department: itKeyMD}}
	m := NewMapper(mapperKeys, aliases, 0, nil)

	res := m.FindKPIFile("Finance Department")
	assert.Equal(t, TierExact, res.Tier)
	assert.Equal(t, "Finance Department", res.Key)
}
