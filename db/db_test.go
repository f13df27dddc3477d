package db

import (
	"path/filepath"
	"testing"
	"time"

	"gradebot/config"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to a fresh sqlite file through Connect, so the schema
// comes from the same migration the service runs.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	var conf config.Configuration
	conf.Database = "sqlite3"
	conf.SqlitePath = filepath.Join(t.TempDir(), "data", "activity.db")
	conf.DbMaxOpenConns = 1
	conf.DbMaxIdleConns = 1

	log, _ := logtest.NewNullLogger()
	gdb, err := Connect(conf, log)
	require.NoError(t, err)
	t.Cleanup(func() { gdb.Close() })
	return gdb
}

// clock hands out the given instants in order, repeating the last one.
type clock struct {
	times []time.Time
	i     int
}

func (c *clock) now() time.Time {
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}

func newTestAudit(t *testing.T, gdb *gorm.DB, times ...time.Time) (*AuditLogger, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	a := NewAuditLogger(gdb, log)
	if len(times) > 0 {
		c := &clock{times: times}
		a.now = c.now
	}
	return a, hook
}

func at(hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", "2026-10-17 "+hhmm, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
