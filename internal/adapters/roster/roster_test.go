package roster_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/teamforge/internal/adapters/roster"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRoster = `
class: Period 3
participants:
  - id: s-01
    name: Ada
    role: leader
    skills: {problemSolving: 9, coding: 8, debugging: 7, creativity: 6, collaboration: 9}
    prior_groupmates: [s-02]
  - id: s-02
    name: Alan
    role: Coder
    skills: {problemSolving: 5, coding: 9, debugging: 6, creativity: 4, collaboration: 3}
`

const jsonRoster = `{
  "participants": [
    {"id": "s-01", "name": "Ada", "role": "Tester",
     "skills": {"problemSolving": 3, "coding": 3, "debugging": 3, "creativity": 3, "collaboration": 3}}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	profiles, err := roster.LoadFile(writeFile(t, "class.yml", yamlRoster))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	ada := profiles[0]
	assert.Equal(t, "s-01", ada.ID())
	assert.Equal(t, profile.Leader, ada.Role())
	assert.Equal(t, 9, ada.Rating(profile.ProblemSolving))
	assert.True(t, ada.GroupedWith("s-02"))
	assert.InDelta(t, 7.8, ada.OverallStrength(), 1e-9)
}

func TestLoadFile_JSON(t *testing.T) {
	profiles, err := roster.LoadFile(writeFile(t, "class.json", jsonRoster))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, profile.Tester, profiles[0].Role())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := roster.LoadFile(writeFile(t, "class.csv", "id,name"))
	assert.ErrorIs(t, err, roster.ErrFormat)

	_, err = roster.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecode_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"rating above ten": strings.Replace(jsonRoster, `"coding": 3`, `"coding": 11`, 1),
		"missing skill":    strings.Replace(jsonRoster, `, "collaboration": 3`, ``, 1),
		"unknown field":    strings.Replace(jsonRoster, `"role": "Tester"`, `"role": "Tester", "age": 12`, 1),
		"no participants":  `{"participants": []}`,
		"fractional":       strings.Replace(jsonRoster, `"coding": 3`, `"coding": 3.5`, 1),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := roster.Decode(strings.NewReader(doc), roster.JSON)
			assert.ErrorIs(t, err, roster.ErrSchema)
		})
	}

	_, err := roster.Decode(strings.NewReader("participants:\n  - id: x\n"), roster.YAML)
	assert.ErrorIs(t, err, roster.ErrSchema)
}

func TestDecode_DomainViolations(t *testing.T) {
	badRole := strings.Replace(jsonRoster, `"Tester"`, `"Wizard"`, 1)
	_, err := roster.Decode(strings.NewReader(badRole), roster.JSON)
	assert.ErrorIs(t, err, profile.ErrValidation)

	badSkill := strings.Replace(jsonRoster, `"creativity"`, `"luck"`, 1)
	_, err = roster.Decode(strings.NewReader(badSkill), roster.JSON)
	assert.ErrorIs(t, err, profile.ErrValidation)

	dup := `{"participants": [` +
		`{"id": "a", "name": "A", "role": "Coder", "skills": {"problemSolving": 1, "coding": 1, "debugging": 1, "creativity": 1, "collaboration": 1}},` +
		`{"id": "a", "name": "B", "role": "Coder", "skills": {"problemSolving": 1, "coding": 1, "debugging": 1, "creativity": 1, "collaboration": 1}}]}`
	_, err = roster.Decode(strings.NewReader(dup), roster.JSON)
	assert.ErrorIs(t, err, profile.ErrValidation)
}

func TestEncode_RoundTrip(t *testing.T) {
	profiles, err := roster.Decode(strings.NewReader(yamlRoster), roster.YAML)
	require.NoError(t, err)

	for _, format := range []roster.Format{roster.YAML, roster.JSON} {
		var buf bytes.Buffer
		require.NoError(t, roster.Encode(&buf, format, "Period 3", profiles))

		again, err := roster.Decode(&buf, format)
		require.NoError(t, err, string(format))
		require.Len(t, again, len(profiles))
		for i := range profiles {
			assert.Equal(t, profiles[i].Skills(), again[i].Skills())
			assert.Equal(t, profiles[i].PriorGroupmates(), again[i].PriorGroupmates())
		}
	}
}
