package storage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/san-kum/navcore/internal/path"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrPathNotFound = errors.New("storage: path not found")

// PathRecord is one stored path, kept in the persisted text format.
type PathRecord struct {
	gorm.Model
	Name      string  `gorm:"size:127;uniqueIndex"`
	Speed     float64 `gorm:"not null"`
	Waypoints int     `gorm:"not null"`
	Data      string  `gorm:"type:text"`
}

// PathLibrary is a SQLite-backed collection of recorded paths.
type PathLibrary struct {
	db *gorm.DB
}

// OpenPathLibrary opens or creates the library at dsn. Use
// "file::memory:" for a throwaway library.
func OpenPathLibrary(dsn string) (*PathLibrary, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open path library: %w", err)
	}
	if err := db.AutoMigrate(&PathRecord{}); err != nil {
		return nil, fmt.Errorf("migrate path library: %w", err)
	}
	return &PathLibrary{db: db}, nil
}

func (l *PathLibrary) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores p, replacing any path with the same name.
func (l *PathLibrary) Put(p *path.Path) error {
	if p == nil || p.Name == "" {
		return path.ErrEmptyName
	}
	rec := PathRecord{
		Name:      p.Name,
		Speed:     p.Speed,
		Waypoints: len(p.Waypoints),
		Data:      path.Marshal([]*path.Path{p}),
	}
	var existing PathRecord
	err := l.db.Where("name = ?", p.Name).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return l.db.Create(&rec).Error
	case err != nil:
		return err
	}
	return l.db.Model(&existing).Updates(map[string]any{
		"speed":     rec.Speed,
		"waypoints": rec.Waypoints,
		"data":      rec.Data,
	}).Error
}

func (l *PathLibrary) Get(name string) (*path.Path, error) {
	var rec PathRecord
	err := l.db.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	paths := path.Unmarshal(rec.Data)
	if len(paths) == 0 {
		return nil, fmt.Errorf("storage: path %s is corrupt", name)
	}
	return paths[0], nil
}

func (l *PathLibrary) Names() ([]string, error) {
	var names []string
	err := l.db.Model(&PathRecord{}).Order("name").Pluck("name", &names).Error
	return names, err
}

func (l *PathLibrary) Delete(name string) error {
	res := l.db.Unscoped().Where("name = ?", name).Delete(&PathRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPathNotFound, name)
	}
	return nil
}

// ImportText stores every path parsed from the text format and returns how
// many were stored.
func (l *PathLibrary) ImportText(data string) (int, error) {
	n := 0
	for _, p := range path.Unmarshal(data) {
		if err := l.Put(p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ExportText renders the named paths, or every path when none are named.
func (l *PathLibrary) ExportText(names ...string) (string, error) {
	if len(names) == 0 {
		all, err := l.Names()
		if err != nil {
			return "", err
		}
		names = all
	}
	paths := make([]*path.Path, 0, len(names))
	for _, name := range names {
		p, err := l.Get(name)
		if err != nil {
			return "", err
		}
		paths = append(paths, p)
	}
	return path.Marshal(paths), nil
}
