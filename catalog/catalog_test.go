package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gradebot/models"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	c := New(map[string]models.AssignmentRecord{
		"Homework1-Q1": {Question: "Plot a histogram"},
	})

	for _, id := range []string{"homework1-q1", "Homework1-Q1", "HOMEWORK1-Q1"} {
		rec, ok := c.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, "Plot a histogram", rec.Question)
	}
}

func TestLookupIsExact(t *testing.T) {
	c := New(map[string]models.AssignmentRecord{"homework1-q1": {}})

	for _, id := range []string{"homework1", "homework1-q1 ", " homework1-q1", "homework1-q11", ""} {
		_, ok := c.Lookup(id)
		assert.False(t, ok, "%q should not match", id)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignment_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"homework1-q1": {"question": "Q", "answer": "A", "rubric": "R", "detailed_rubric": "RD"},
		"homework1-q2": {"question": "Q2"}
	}`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"homework1-q1", "homework1-q2"}, c.Identifiers())

	rec, ok := c.Lookup("homework1-q2")
	require.True(t, ok)
	assert.Equal(t, "", rec.DetailedRubric)
}

func TestLoadOrEmptyOnMalformedMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignment_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	log, hook := logtest.NewNullLogger()
	c := LoadOrEmpty(path, log)

	assert.Equal(t, 0, c.Len())
	_, ok := c.Lookup("homework1-q1")
	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoadOrEmptyOnMissingMap(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	c := LoadOrEmpty(filepath.Join(t.TempDir(), "nope.json"), log)
	assert.Equal(t, 0, c.Len())
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestCompile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "question-bank", "viz-midwest-scatterplot")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	writeFile(t, dir, "scatter-Q.qmd", "---\ntitle: Scatter\nsubtitle: midwest\n---\nMake a scatterplot.\n")
	writeFile(t, dir, "scatter-A.qmd", "---\ntitle: Answer\n---\nggplot(midwest) +\n  geom_point()\n")
	writeFile(t, dir, "scatter-R.qmd", "- uses geom_point\n")
	writeFile(t, dir, "scatter-RD.qmd", "  title: indented front matter\n- uses geom_point with midwest data\n")
	writeFile(t, dir, "notes.md", "ignored")

	m, err := ReadManifest(strings.NewReader(`
assignments:
  - title: homework1-Q3
    dir: question-bank/viz-midwest-scatterplot
`))
	require.NoError(t, err)

	records, err := Compile(m, root)
	require.NoError(t, err)

	rec, ok := records["homework1-q3"]
	require.True(t, ok)
	assert.Equal(t, "Make a scatterplot.\n", rec.Question)
	assert.Equal(t, "ggplot(midwest) +\n  geom_point()\n", rec.Answer)
	assert.Equal(t, "- uses geom_point\n", rec.Rubric)
	assert.Equal(t, "- uses geom_point with midwest data\n", rec.DetailedRubric)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	out := filepath.Join(root, "assignment_map.json")
	require.NoError(t, os.WriteFile(out, buf.Bytes(), 0o600))
	c, err := Load(out)
	require.NoError(t, err)
	got, ok := c.Lookup("HOMEWORK1-Q3")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestCompileMissingDirectory(t *testing.T) {
	m := Manifest{Assignments: []ManifestEntry{{Title: "hw", Dir: "does-not-exist"}}}
	_, err := Compile(m, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hw")
}

func TestReadManifestRequiresFields(t *testing.T) {
	_, err := ReadManifest(strings.NewReader("assignments:\n  - title: hw\n"))
	require.Error(t, err)
}
