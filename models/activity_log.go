package models

import "time"

/************************************************
/**** MARK: ACTIVITY ACTIONS ****/
/************************************************/
const ACTION_ANSWER = "answer"
const ACTION_FEEDBACK = "feedback"
const ACTION_ASSIGNMENT_LOOKUP_ERROR = "assignment_lookup_error"

// ActivityLog is one audit event: a submission, the feedback returned for it,
// or a failed assignment lookup. Rows are only ever inserted.
//
// Ts is stamped by the audit logger; ID breaks ties between events that share
// a timestamp.
type ActivityLog struct {
	ID         int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	SessionID  string    `gorm:"column:session_id;not null;index" json:"session_id"`
	Assignment string    `gorm:"not null;index" json:"assignment"`
	Action     string    `gorm:"not null;index" json:"action"`
	Detail     string    `gorm:"type:text" json:"detail"`
	Ts         time.Time `gorm:"column:ts;not null;index" json:"ts"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

// Who returns the short actor label the dashboard shows for an action.
func Who(action string) string {
	switch action {
	case ACTION_ANSWER:
		return "stu"
	case ACTION_FEEDBACK:
		return "llm"
	default:
		return action
	}
}
