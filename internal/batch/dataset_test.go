package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dietcheck/diet"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGroundTruth(t *testing.T) {
	path := writeCSV(t, "id,ingredients,keto,vegan\n"+
		"0,\"['bacon', 'egg']\",1,0\n"+
		"1,\"2 cups flour, 1 cup sugar\",0.0,1.0\n"+
		"2,\"['tofu']\",true,false\n")

	rows, err := LoadGroundTruth(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, []string{"bacon", "egg"}, diet.ToList(rows[0].Ingredients))
	assert.True(t, rows[0].Truth[diet.Keto])
	assert.False(t, rows[0].Truth[diet.Vegan])

	assert.False(t, rows[1].Truth[diet.Keto])
	assert.True(t, rows[1].Truth[diet.Vegan])

	assert.True(t, rows[2].Truth[diet.Keto])
	assert.False(t, rows[2].Truth[diet.Vegan])
}

func TestLoadGroundTruthHeaderDetectionIsCaseInsensitive(t *testing.T) {
	path := writeCSV(t, "Ingredients,Is_Keto,Is_Vegan\n\"['tofu']\",0,1\n")
	rows, err := LoadGroundTruth(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Truth[diet.Vegan])
}

func TestLoadGroundTruthMissingColumns(t *testing.T) {
	path := writeCSV(t, "id,keto,vegan\n0,1,0\n")
	_, err := LoadGroundTruth(path)
	assert.ErrorContains(t, err, "no ingredients column")

	path = writeCSV(t, "ingredients,keto\n\"['tofu']\",1\n")
	_, err = LoadGroundTruth(path)
	assert.ErrorContains(t, err, "label column")
}

func TestLoadGroundTruthBadLabel(t *testing.T) {
	path := writeCSV(t, "ingredients,keto,vegan\n\"['tofu']\",maybe,0\n")
	_, err := LoadGroundTruth(path)
	assert.ErrorContains(t, err, "unrecognized label")
}

func TestParseLabel(t *testing.T) {
	for _, s := range []string{"1", "1.0", "true", "T", "YES"} {
		got, err := parseLabel(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"0", "0.0", "false", "F", "no", "", "  "} {
		got, err := parseLabel(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}
	_, err := parseLabel("2")
	assert.Error(t, err)
}

func TestLoadColumn(t *testing.T) {
	path := writeCSV(t, "title,ingredients\npie,\"['apple', 'flour']\"\nsoup,\n,\"['leek']\"\n")

	got, err := LoadColumn(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"['apple', 'flour']", "['leek']"}, got)

	got, err = LoadColumn(path, "Title")
	require.NoError(t, err)
	assert.Equal(t, []string{"pie", "soup"}, got)

	_, err = LoadColumn(path, "nope")
	assert.Error(t, err)
}
