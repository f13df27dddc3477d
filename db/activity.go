package db

import (
	"fmt"
	"strings"
	"time"

	"gradebot/models"
	"gradebot/tools"

	"github.com/jinzhu/gorm"
)

// AllSessions selects every session in dashboard queries.
const AllSessions = "ALL"

// DetailPreviewLen is how much of a detail the listing shows by default.
const DetailPreviewLen = 60

// NoSession selects events recorded without a session id.
const NoSession = "(no session)"

const hourLayout = "2006-01-02 15:04:05"

// ActivityRow is one line of the dashboard listing.
type ActivityRow struct {
	ID         int64     `json:"id"`
	Assignment string    `json:"assignment"`
	Ts         time.Time `json:"ts"`
	Session    string    `json:"session"`
	Who        string    `json:"who"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail"`
}

type ListOptions struct {
	Limit  int
	Offset int
	// Full keeps details untruncated.
	Full bool
}

// HourlyCount is the number of events one session produced in one hour.
type HourlyCount struct {
	Session string    `json:"session"`
	Hour    time.Time `json:"hour"`
	Count   int64     `json:"count"`
}

// Activity runs the read-only dashboard queries over activity_log.
type Activity struct {
	db *gorm.DB
}

func NewActivity(gdb *gorm.DB) *Activity {
	return &Activity{db: gdb}
}

func isAll(session string) bool {
	return session == "" || session == AllSessions
}

func (a *Activity) scoped(session string) *gorm.DB {
	q := a.db.New().Model(&models.ActivityLog{})
	switch {
	case isAll(session):
	case session == NoSession:
		q = q.Where("session_id = ''")
	default:
		q = q.Where("session_id = ?", session)
	}
	return q
}

// SessionIDs returns AllSessions, every distinct non-empty session id, and
// NoSession last when some events carry an empty session id.
func (a *Activity) SessionIDs() ([]string, error) {
	var ids []string
	err := a.db.New().Model(&models.ActivityLog{}).
		Order("session_id asc").
		Pluck("DISTINCT session_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]string, 0, len(ids)+1)
	out = append(out, AllSessions)
	unnamed := false
	for _, id := range ids {
		if id == "" {
			unnamed = true
			continue
		}
		out = append(out, id)
	}
	if unnamed {
		out = append(out, NoSession)
	}
	return out, nil
}

// ListActivity returns events newest first; ties on ts fall back to id.
func (a *Activity) ListActivity(session string, opts ListOptions) ([]ActivityRow, error) {
	q := a.scoped(session).Order("ts desc").Order("id desc")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	var logs []models.ActivityLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	rows := make([]ActivityRow, 0, len(logs))
	for _, l := range logs {
		row := toRow(l)
		if !opts.Full {
			row.Detail = tools.Truncate(row.Detail, DetailPreviewLen)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EachActivity streams every matching event, untruncated and in listing
// order, to fn. Used by exports.
func (a *Activity) EachActivity(session string, fn func(ActivityRow) error) error {
	rows, err := a.scoped(session).Order("ts desc").Order("id desc").Rows()
	if err != nil {
		return fmt.Errorf("export activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.ActivityLog
		if err := a.db.ScanRows(rows, &l); err != nil {
			return fmt.Errorf("export activity: %w", err)
		}
		if err := fn(toRow(l)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountActivity returns how many events match.
func (a *Activity) CountActivity(session string) (int64, error) {
	var n int64
	if err := a.scoped(session).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

// ActivityDetail loads one event with its full detail.
func (a *Activity) ActivityDetail(id int64) (models.ActivityLog, error) {
	var l models.ActivityLog
	err := a.db.New().First(&l, id).Error
	return l, err
}

type hourlyRow struct {
	SessionID  string
	HourBucket string
	EntryCount int64
}

// HourlyCounts groups events by session and hour, ordered by session then hour.
func (a *Activity) HourlyCounts(session string) ([]HourlyCount, error) {
	bucket := a.hourExpr()

	var rows []hourlyRow
	err := a.scoped(session).
		Select(fmt.Sprintf("session_id, %s as hour_bucket, count(*) as entry_count", bucket)).
		Group("session_id, hour_bucket").
		Order("session_id asc, hour_bucket asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hourly activity: %w", err)
	}

	out := make([]HourlyCount, 0, len(rows))
	for _, r := range rows {
		h, err := time.ParseInLocation(hourLayout, r.HourBucket, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("hourly activity: bucket %q: %w", r.HourBucket, err)
		}
		out = append(out, HourlyCount{Session: r.SessionID, Hour: h, Count: r.EntryCount})
	}
	return out, nil
}

// hourExpr truncates ts to the hour as "YYYY-MM-DD HH:00:00" UTC in the current
// dialect. Postgres would otherwise bucket in the session TimeZone.
func (a *Activity) hourExpr() string {
	dialect := strings.ToLower(a.db.Dialect().GetName())
	if strings.Contains(dialect, "postgres") {
		return "to_char(date_trunc('hour', ts AT TIME ZONE 'UTC'), 'YYYY-MM-DD HH24:00:00')"
	}
	return "strftime('%Y-%m-%d %H:00:00', ts)"
}

func toRow(l models.ActivityLog) ActivityRow {
	return ActivityRow{
		ID:         l.ID,
		Assignment: l.Assignment,
		Ts:         l.Ts,
		Session:    l.SessionID,
		Who:        models.Who(l.Action),
		Action:     l.Action,
		Detail:     l.Detail,
	}
}
