package controllers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	dbpkg "gradebot/db"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// ------------------------------
// Instructor dashboard
// ------------------------------

func activityOrFail(c *gin.Context) *dbpkg.Activity {
	a := dbpkg.ActivityInstance(c)
	if a == nil {
		RespondError(c, "activity store not configured", http.StatusInternalServerError)
	}
	return a
}

// GET /api/activity/sessions
// Primeiro item é sempre "ALL".
func GetActivitySessions(c *gin.Context) {
	a := activityOrFail(c)
	if a == nil {
		return
	}
	ids, err := a.SessionIDs()
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"sessions": ids})
}

// GET /api/activity
// Query params:
// - session=<id>|ALL (optional, default ALL)
// - limit (optional, default 100, max 1000)
// - offset (optional)
func GetActivity(c *gin.Context) {
	a := activityOrFail(c)
	if a == nil {
		return
	}

	limit, ok := queryInt(c, "limit", DEFAULT_PAGE_SIZE)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	limit = clampInt(limit, 1, MAX_PAGE_SIZE)

	session := c.DefaultQuery("session", dbpkg.AllSessions)
	rows, err := a.ListActivity(session, dbpkg.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := a.CountActivity(session)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{
		"session": session,
		"items":   rows,
		"limit":   limit,
		"offset":  offset,
		"total":   total,
	})
}

// GET /api/activity/:id
func GetActivityByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	a := activityOrFail(c)
	if a == nil {
		return
	}

	ev, err := a.ActivityDetail(id)
	if gorm.IsRecordNotFoundError(err) {
		RespondError(c, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"activity": ev})
}

type hourRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// GET /api/activity/hourly?session=
// Além das contagens, devolve o intervalo [primeira hora - 1h, última hora + 1h]
// para o eixo do gráfico. Sem eventos, "range" é null.
func GetActivityHourly(c *gin.Context) {
	a := activityOrFail(c)
	if a == nil {
		return
	}

	session := c.DefaultQuery("session", dbpkg.AllSessions)
	buckets, err := a.HourlyCounts(session)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{
		"session": session,
		"buckets": buckets,
		"range":   paddedRange(buckets),
	})
}

func paddedRange(buckets []dbpkg.HourlyCount) *hourRange {
	if len(buckets) == 0 {
		return nil
	}
	lo, hi := buckets[0].Hour, buckets[0].Hour
	for _, b := range buckets[1:] {
		if b.Hour.Before(lo) {
			lo = b.Hour
		}
		if b.Hour.After(hi) {
			hi = b.Hour
		}
	}
	return &hourRange{From: lo.Add(-time.Hour), To: hi.Add(time.Hour)}
}

// GET /api/activity/export?session=
// CSV completo (sem truncar detail), na mesma ordem da listagem.
func ExportActivity(c *gin.Context) {
	a := activityOrFail(c)
	if a == nil {
		return
	}

	session := c.DefaultQuery("session", dbpkg.AllSessions)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="activity_log.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "ts", "session", "assignment", "who", "action", "detail"})
	err := a.EachActivity(session, func(r dbpkg.ActivityRow) error {
		return w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.Ts.UTC().Format(time.RFC3339),
			r.Session,
			r.Assignment,
			r.Who,
			r.Action,
			r.Detail,
		})
	})
	w.Flush()
	if err == nil {
		err = w.Error()
	}
	if err != nil {
		// headers are already out; all we can do is log and cut the body short
		_ = c.Error(err)
	}
}
