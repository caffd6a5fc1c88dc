// Package archive persists conversation transcripts to MySQL for later review.
// Archiving is an observer of the live transcript and never feeds back into it.
package archive

import (
	"context"
	"fmt"

	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/ethanbaker/essaychat/pkg/utils"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Writer persists turns. Implemented by MySqlStore
type Writer interface {
	CreateSession(ctx context.Context, sessionID uuid.UUID) error
	SaveTurn(ctx context.Context, sessionID uuid.UUID, position int, turn transcript.Turn) error
}

// MySqlStore handles transcript persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

var _ Writer = (*MySqlStore)(nil)

// DSNFromConfig builds a MySQL DSN from the MYSQL_* configuration keys
func DSNFromConfig(cfg *utils.Config) string {
	dbConfig := gomysql.Config{
		User:                 cfg.Get("MYSQL_USERNAME"),
		Passwd:               cfg.Get("MYSQL_PASSWORD"),
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%s", cfg.GetWithDefault("MYSQL_HOST", "localhost"), cfg.GetWithDefault("MYSQL_PORT", "3306")),
		DBName:               cfg.Get("MYSQL_DATABASE"),
		ParseTime:            true,
		AllowNativePasswords: true,
	}
	return dbConfig.FormatDSN()
}

// NewMySqlStore opens the database and migrates the archive tables
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.AutoMigrate(&ArchivedSession{}, &TurnRecord{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate tables")
	}

	return &MySqlStore{db: db}, nil
}

// CreateSession records a new archived session
func (s *MySqlStore) CreateSession(ctx context.Context, sessionID uuid.UUID) error {
	result := s.db.WithContext(ctx).Create(&ArchivedSession{ID: sessionID})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create session")
	}
	return nil
}

// SaveTurn stores a single turn. Saving the same turn twice is a no-op
func (s *MySqlStore) SaveTurn(ctx context.Context, sessionID uuid.UUID, position int, turn transcript.Turn) error {
	record := NewTurnRecord(sessionID, position, turn)

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to save turn %s", turn.ID)
	}
	return nil
}

// ListTurns returns the archived turns of a session in insertion order
func (s *MySqlStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]transcript.Turn, error) {
	var records []*TurnRecord
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("position ASC").Find(&records)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query turns")
	}

	turns := make([]transcript.Turn, 0, len(records))
	for _, r := range records {
		turns = append(turns, r.Turn())
	}
	return turns, nil
}

// Close closes the database connection
func (s *MySqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from gorm.DB")
	}
	return sqlDB.Close()
}
