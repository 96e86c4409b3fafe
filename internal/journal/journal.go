// Package journal keeps a local SQLite record of every command the gate was
// asked to run, refused ones included.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atinylittleshell/tars/internal/gate"
)

type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	// Command is the shell-quoted form of argv, or the bare name when refused.
	Command    string
	Argv       string // JSON array; the requested argv when refused
	Sudo       bool
	Refused    bool
	Succeeded  bool
	ExitCode   sql.NullInt32
	DurationMs int64
	Directory  string
}

func (Entry) TableName() string {
	return "journal_entries"
}

func Open(dbFilePath string, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening journal database: %w", err)
	}

	if !db.Migrator().HasTable(&Entry{}) {
		if err := db.AutoMigrate(&Entry{}); err != nil {
			return nil, fmt.Errorf("error migrating journal schema: %w", err)
		}
	}

	return &Journal{db: db, logger: log}, nil
}

// Record stores outcome. It matches gate.Observer; storage failures are
// logged and never reach the user.
func (j *Journal) Record(ctx context.Context, outcome gate.Outcome) {
	entry := Entry{
		Command:    outcome.Request.Command,
		Sudo:       outcome.Request.RequiresSudo,
		Refused:    outcome.Refused,
		Succeeded:  outcome.Succeeded(),
		DurationMs: outcome.Duration.Milliseconds(),
	}

	if !outcome.Refused {
		entry.Command = gate.DisplayCommand(outcome.Argv)
		entry.ExitCode = sql.NullInt32{Int32: int32(outcome.ExitCode), Valid: true}
	}

	requested := outcome.Argv
	if requested == nil {
		requested = append([]string{outcome.Request.Command}, outcome.Request.Flags...)
		requested = append(requested, outcome.Request.Args...)
	}
	argv, err := json.Marshal(requested)
	if err == nil {
		entry.Argv = string(argv)
	}

	if dir, err := os.Getwd(); err == nil {
		entry.Directory = dir
	}

	if result := j.db.WithContext(ctx).Create(&entry); result.Error != nil {
		j.logger.Warn("failed to record journal entry", zap.String("command", entry.Command), zap.Error(result.Error))
	}
}

// Recent returns up to limit of the newest entries, oldest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	result := j.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

func (j *Journal) Reset() error {
	result := j.db.Exec("DELETE FROM journal_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
