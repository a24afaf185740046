package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/schemas"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

var schemaFiles = []string{
	"job_profile.schema.json",
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", schemaFile)
		})
	}
}

func TestSchemaFiles_Compile(t *testing.T) {
	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err)

			_, err = schemas.Compile(schemaFile, string(data))
			assert.NoError(t, err)
		})
	}
}

func TestJobProfile_ValidExample(t *testing.T) {
	err := schemas.ValidateJSON("job_profile.schema.json", "../testdata/valid/job_profile.json")
	assert.NoError(t, err)
}

// The schema's property names must stay in line with types.JobProfile.
func TestJobProfile_MatchesGoType(t *testing.T) {
	data, err := os.ReadFile("../testdata/valid/job_profile.json")
	require.NoError(t, err)

	var profile types.JobProfile
	require.NoError(t, json.Unmarshal(data, &profile))
	assert.Equal(t, "Backend Developer", profile.PositionTitle)
	require.Len(t, profile.ProfessionalSkills, 1)
	assert.Equal(t, 3, profile.ProfessionalSkills[0].Skills[0].Level)

	roundTrip, err := json.Marshal(profile)
	require.NoError(t, err)

	schemaData, err := os.ReadFile("job_profile.schema.json")
	require.NoError(t, err)
	assert.NoError(t, schemas.ValidateJSONString(string(schemaData), string(roundTrip)))
}
