package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gradebot/config"
	"gradebot/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/sirupsen/logrus"
)

// Connect opens the database (sqlite3 by default) and sizes the pool. Each
// audit insert borrows a pooled connection and hands it back when the
// statement finishes, success or not.
func Connect(conf config.Configuration, log logrus.FieldLogger) (*gorm.DB, error) {
	var (
		gdb *gorm.DB
		err error
	)

	if isPostgres(conf.Database) {
		log.WithFields(logrus.Fields{"host": conf.DbHost, "db": conf.DbName}).Info("db: using postgresql")
		dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
			conf.DbHost, conf.DbPort, conf.DbUser, conf.DbName, conf.DbPass, conf.DbSSLMode)
		gdb, err = gorm.Open("postgres", dsn)
	} else {
		log.WithField("path", conf.SqlitePath).Info("db: using sqlite3")
		if dir := filepath.Dir(conf.SqlitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		gdb, err = gorm.Open("sqlite3", conf.SqlitePath)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", conf.Database, err)
	}

	gdb.DB().SetMaxOpenConns(conf.DbMaxOpenConns)
	gdb.DB().SetMaxIdleConns(conf.DbMaxIdleConns)
	gdb.DB().SetConnMaxLifetime(30 * time.Minute)

	gdb.SetLogger(log)
	gdb.LogMode(conf.LogSQL)

	if conf.AutoMigrate || !isPostgres(conf.Database) {
		if err := Migrate(gdb); err != nil {
			gdb.Close()
			return nil, err
		}
	}
	return gdb, nil
}

// Migrate creates or extends the activity_log table.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.ActivityLog{}).Error; err != nil {
		return fmt.Errorf("migrate activity_log: %w", err)
	}
	return nil
}

func isPostgres(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == "postgres" || name == "postgresql"
}
