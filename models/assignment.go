package models

// AssignmentRecord holds the grading materials of one assignment, as compiled
// from the question bank. Any field may be empty.
type AssignmentRecord struct {
	Question       string `json:"question" yaml:"question"`
	Answer         string `json:"answer" yaml:"answer"`
	Rubric         string `json:"rubric" yaml:"rubric"`
	DetailedRubric string `json:"detailed_rubric" yaml:"detailed_rubric"`
}

// GradingRubric is the rubric text sent to the model: the detailed rubric when
// present, the terse one otherwise.
func (a AssignmentRecord) GradingRubric() string {
	if a.DetailedRubric != "" {
		return a.DetailedRubric
	}
	return a.Rubric
}
