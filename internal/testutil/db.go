// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yukikurage/tasknest/internal/database"
	"github.com/yukikurage/tasknest/internal/models"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=on"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: gets its own database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// NewMockDB opens a gorm MySQL connection backed by sqlmock.
func NewMockDB(t testing.TB) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := database.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, database.SetupJoinTables(db))

	t.Cleanup(func() {
		conn.Close()
	})
	return db, mock
}

// CreateTag inserts a tag directly.
func CreateTag(t testing.TB, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Color: models.DefaultTagColor}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateTask inserts a task directly and links the given tags.
func CreateTask(t testing.TB, db *gorm.DB, title string, priority models.Priority, tags ...*models.Tag) *models.Task {
	t.Helper()

	task := &models.Task{Title: title, Priority: priority}
	require.NoError(t, db.Create(task).Error)
	for _, tag := range tags {
		require.NoError(t, db.Create(&models.TaskTag{TaskID: task.ID, TagID: tag.ID}).Error)
	}
	return task
}
