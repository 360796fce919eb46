package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CategoryRow is the subset of the categories table the menu needs.
type CategoryRow struct {
	Name      string
	GroupName *string
}

// GormSource reads active categories from PostgreSQL.
type GormSource struct {
	db *gorm.DB
}

// OpenGormSource connects to dsn.
func OpenGormSource(dsn string) (*GormSource, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("taxonomy: database dsn is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open database: %w", err)
	}
	return NewGormSource(db), nil
}

// NewGormSource wraps an open connection.
func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

// FetchCategories reads the active categories in creation order.
func (s *GormSource) FetchCategories(ctx context.Context) ([]Raw, error) {
	if s == nil || s.db == nil {
		return nil, ErrSourceUnavailable
	}
	var rows []CategoryRow
	err := s.db.WithContext(ctx).
		Table("categories").
		Select("name, group_name").
		Where("status = ?", "Active").
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return rowsToRaw(rows), nil
}

func rowsToRaw(rows []CategoryRow) []Raw {
	out := make([]Raw, 0, len(rows))
	for _, row := range rows {
		rec := Raw{Name: strings.TrimSpace(row.Name)}
		if row.GroupName != nil {
			rec.Group = strings.TrimSpace(*row.GroupName)
		}
		out = append(out, rec)
	}
	return out
}

// Close closes the connection pool.
func (s *GormSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
