package catalog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gradebot/models"

	"gopkg.in/yaml.v3"
)

// Manifest lists the question-bank directories that make up the catalog.
//
//	assignments:
//	  - title: homework1-Q1
//	    dir: question-bank/viz-midwest-histogram-binwidths
type Manifest struct {
	Assignments []ManifestEntry `yaml:"assignments"`
}

type ManifestEntry struct {
	Title string `yaml:"title"`
	Dir   string `yaml:"dir"`
}

// ReadManifest parses a YAML manifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	for i, e := range m.Assignments {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Dir) == "" {
			return m, fmt.Errorf("manifest entry %d: title and dir are required", i)
		}
	}
	return m, nil
}

// Compile reads every manifest entry's directory (relative to root) and
// returns the assignment map keyed by lower-cased title. Later entries with the
// same title replace earlier ones.
func Compile(m Manifest, root string) (map[string]models.AssignmentRecord, error) {
	out := make(map[string]models.AssignmentRecord, len(m.Assignments))
	for _, e := range m.Assignments {
		dir := e.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		rec, err := readAssignmentDir(dir)
		if err != nil {
			return nil, fmt.Errorf("assignment %s: %w", e.Title, err)
		}
		out[strings.ToLower(e.Title)] = rec
	}
	return out, nil
}

// WriteJSON writes the assignment map the way the service expects to load it.
func WriteJSON(w io.Writer, records map[string]models.AssignmentRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

func readAssignmentDir(dir string) (models.AssignmentRecord, error) {
	var rec models.AssignmentRecord

	entries, err := os.ReadDir(dir)
	if err != nil {
		return rec, err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		var field *string
		switch {
		case strings.HasSuffix(name, "-Q.qmd"):
			field = &rec.Question
		case strings.HasSuffix(name, "-A.qmd"):
			field = &rec.Answer
		case strings.HasSuffix(name, "-RD.qmd"):
			field = &rec.DetailedRubric
		case strings.HasSuffix(name, "-R.qmd"):
			field = &rec.Rubric
		default:
			continue
		}
		content, err := readBody(filepath.Join(dir, name))
		if err != nil {
			return rec, err
		}
		*field = content
	}
	return rec, nil
}

// readBody returns the file without its front-matter lines (title:, subtitle:
// and --- fences), keeping every other line as-is.
func readBody(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" && !isFrontMatter(line) {
			sb.WriteString(line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func isFrontMatter(line string) bool {
	s := strings.TrimLeft(line, " \t\r\n")
	return strings.HasPrefix(s, "title:") ||
		strings.HasPrefix(s, "subtitle:") ||
		strings.HasPrefix(s, "---")
}
