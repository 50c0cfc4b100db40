package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
)

// SQLiteProfileRepository implements ports.ProfileRepository using GORM
// and SQLite.
type SQLiteProfileRepository struct {
	db *gorm.DB
}

// ProfileModel is the GORM model for device profiles.
type ProfileModel struct {
	Name        string `gorm:"primaryKey"`
	Platform    string
	Version     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the table name stable across GORM pluralization rules.
func (ProfileModel) TableName() string { return "profiles" }

// NewSQLiteProfileRepository initializes the database and migrates schema.
func NewSQLiteProfileRepository(path string) (*SQLiteProfileRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("failed to enable tracing plugin: %w", err)
	}

	if err := db.AutoMigrate(&ProfileModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteProfileRepository{db: db}, nil
}

// List returns all profiles ordered by name.
func (r *SQLiteProfileRepository) List(ctx context.Context) ([]domain.DeviceProfile, error) {
	var models []ProfileModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]domain.DeviceProfile, 0, len(models))
	for i := range models {
		profiles = append(profiles, toDomain(&models[i]))
	}
	return profiles, nil
}

// Get returns a profile by name or ports.ErrProfileNotFound.
func (r *SQLiteProfileRepository) Get(ctx context.Context, name string) (*domain.DeviceProfile, error) {
	var model ProfileModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %q: %w", name, err)
	}
	profile := toDomain(&model)
	return &profile, nil
}

// Save creates or updates a profile keyed by name.
func (r *SQLiteProfileRepository) Save(ctx context.Context, profile domain.DeviceProfile) error {
	model := ProfileModel{
		Name:        profile.Name,
		Platform:    profile.Platform,
		Version:     profile.Version,
		Description: profile.Description,
	}
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save profile %q: %w", profile.Name, err)
	}
	return nil
}

// Delete removes a profile by name, reporting ports.ErrProfileNotFound
// when nothing was deleted.
func (r *SQLiteProfileRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Delete(&ProfileModel{}, "name = ?", name)
	if res.Error != nil {
		return fmt.Errorf("failed to delete profile %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrProfileNotFound
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *SQLiteProfileRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDomain(m *ProfileModel) domain.DeviceProfile {
	return domain.DeviceProfile{
		Name:        m.Name,
		Platform:    m.Platform,
		Version:     m.Version,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
