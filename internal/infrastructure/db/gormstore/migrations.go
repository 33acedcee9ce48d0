package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// Migration is one versioned schema change. Versions sort chronologically.
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
	Down    func(tx *gorm.DB) error
}

// MigrationRecord marks an applied migration.
type MigrationRecord struct {
	Version   string    `gorm:"primaryKey;size:14"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (MigrationRecord) TableName() string { return "schema_migrations" }

var migrations = []Migration{
	{
		Version: "20240115090000",
		Name:    "create_visitors",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(&domain.Visitor{}) },
		Down:    func(tx *gorm.DB) error { return tx.Migrator().DropTable(&domain.Visitor{}) },
	},
	{
		Version: "20240115090100",
		Name:    "create_visits",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(&domain.Visit{}) },
		Down:    func(tx *gorm.DB) error { return tx.Migrator().DropTable(&domain.Visit{}) },
	},
	{
		Version: "20240115090200",
		Name:    "create_visitor_photos",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(&domain.VisitorPhoto{}) },
		Down:    func(tx *gorm.DB) error { return tx.Migrator().DropTable(&domain.VisitorPhoto{}) },
	},
	{
		Version: "20240122110000",
		Name:    "create_custom_admins",
		Up:      func(tx *gorm.DB) error { return tx.AutoMigrate(&domain.AdminActor{}) },
		Down:    func(tx *gorm.DB) error { return tx.Migrator().DropTable(&domain.AdminActor{}) },
	},
	{
		Version: "20240305140000",
		Name:    "add_visit_signatures",
		Up: func(tx *gorm.DB) error {
			for _, col := range []string{"SignatureData", "SignatureType", "SignatureImage"} {
				if tx.Migrator().HasColumn(&domain.Visit{}, col) {
					continue
				}
				if err := tx.Migrator().AddColumn(&domain.Visit{}, col); err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			for _, col := range []string{"SignatureImage", "SignatureType", "SignatureData"} {
				if err := tx.Migrator().DropColumn(&domain.Visit{}, col); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrator applies the registered migrations and tracks them in schema_migrations.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	log        zerolog.Logger
}

func NewMigrator(db *gorm.DB, log zerolog.Logger) *Migrator {
	return &Migrator{db: db, migrations: migrations, log: log}
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	var records []MigrationRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	versions := make(map[string]bool, len(records))
	for _, r := range records {
		versions[r.Version] = true
	}
	return versions, nil
}

// Up applies pending migrations in order, each in its own transaction.
// It returns the versions it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, mg := range m.migrations {
		if done[mg.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mg.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{Version: mg.Version, Name: mg.Name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %s_%s: %w", mg.Version, mg.Name, err)
		}
		m.log.Info().Str("version", mg.Version).Str("name", mg.Name).Msg("migration applied")
		applied = append(applied, mg.Version)
	}
	return applied, nil
}

// Down rolls back the most recently applied migration. It returns the version
// rolled back, or "" when nothing was applied.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	if _, err := m.applied(ctx); err != nil {
		return "", err
	}

	var last MigrationRecord
	err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last migration: %w", err)
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("migration %s is applied but not registered", last.Version)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := target.Down(tx); err != nil {
			return err
		}
		return tx.Delete(&last).Error
	})
	if err != nil {
		return "", fmt.Errorf("rollback %s_%s: %w", target.Version, target.Name, err)
	}
	m.log.Info().Str("version", target.Version).Str("name", target.Name).Msg("migration rolled back")
	return target.Version, nil
}

// Status lists every registered migration with whether it is applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mg := range m.migrations {
		out = append(out, MigrationStatus{Version: mg.Version, Name: mg.Name, Applied: done[mg.Version]})
	}
	return out, nil
}

type MigrationStatus struct {
	Version string
	Name    string
	Applied bool
}
