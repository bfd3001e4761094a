package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"glycoanalyzer/internal/domain/license"
	"glycoanalyzer/internal/shared/logger"
)

// licenseModel maps the licenses table managed by the external directory.
// Column names mirror the registry export so the same data can be served
// from CSV or SQLite interchangeably.
type licenseModel struct {
	Email           string    `gorm:"column:email;primaryKey"`
	Password        string    `gorm:"column:password"`
	LicenseeName    string    `gorm:"column:nom_medecin"`
	Structure       string    `gorm:"column:structure"`
	TierLabel       string    `gorm:"column:type_licence"`
	CreatedAt       time.Time `gorm:"column:date_creation"`
	ExpiresAt       time.Time `gorm:"column:date_expiration"`
	RemainingPhotos int       `gorm:"column:photos_restantes"`
	Status          string    `gorm:"column:statut"`
}

func (licenseModel) TableName() string {
	return "licenses"
}

// SQLiteDirectory serves lookups from a SQLite registry database. The table
// is owned and migrated by the external directory; this side only reads.
type SQLiteDirectory struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSQLiteDirectory(path string, log logger.Interface) (*SQLiteDirectory, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open license registry database: %w", err)
	}

	log.Infow("license registry database opened", "path", path)

	return &SQLiteDirectory{db: db, logger: log}, nil
}

func (d *SQLiteDirectory) Lookup(ctx context.Context, email string) (*license.Record, error) {
	var model licenseModel
	err := d.db.WithContext(ctx).
		Where("email = ?", license.NormalizeEmail(email)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, license.ErrRecordNotFound
		}
		d.logger.Errorw("license lookup failed", "error", err)
		return nil, fmt.Errorf("failed to query license: %w", err)
	}

	return &license.Record{
		Email:           license.NormalizeEmail(model.Email),
		Password:        model.Password,
		LicenseeName:    model.LicenseeName,
		Structure:       model.Structure,
		TierLabel:       model.TierLabel,
		CreatedAt:       model.CreatedAt,
		ExpiresAt:       model.ExpiresAt,
		RemainingPhotos: model.RemainingPhotos,
		Status:          license.ParseStatus(model.Status),
	}, nil
}
