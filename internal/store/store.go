// Package store persists the alert log in a SQLite database.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes the alert repository.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Alert{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAlert inserts one alert row and fills its store-assigned id.
func (d *Database) SaveAlert(alert *Alert) error {
	if alert == nil {
		return errors.New("alert is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(alert).Error
}

// ListAlerts returns all alerts newest-first, optionally limited.
func (d *Database) ListAlerts(limit int) ([]Alert, error) {
	query := d.gorm.Model(&Alert{}).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var alerts []Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// ActiveAlerts returns non-dismissed alerts newest-first.
func (d *Database) ActiveAlerts(limit int) ([]Alert, error) {
	query := d.gorm.Model(&Alert{}).Where("is_dismissed = ?", false).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var alerts []Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// GetAlert fetches one alert by id.
func (d *Database) GetAlert(id uint) (*Alert, error) {
	var alert Alert
	if err := d.gorm.First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// DismissAlert marks one alert dismissed. It reports gorm.ErrRecordNotFound
// for an unknown id.
func (d *Database) DismissAlert(id uint) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := d.gorm.Model(&Alert{}).Where("id = ?", id).Update("is_dismissed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountAlerts returns the number of stored alerts.
func (d *Database) CountAlerts() (int64, error) {
	var count int64
	if err := d.gorm.Model(&Alert{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
