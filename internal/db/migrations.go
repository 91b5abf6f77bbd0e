package db

import (
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/clarity/migrations"
	"gorm.io/gorm"
)

// requiredColumns are introduced by additive migrations and read by the
// repositories. A run that ends without one of them still opens the store
// but lists the column under MigrationReport.Missing.
var requiredColumns = []tableColumn{
	{Table: "daily_meta", Column: "clarity_score"},
	{Table: "daily_meta", Column: "tracked"},
}

type tableColumn struct {
	Table  string
	Column string
}

func (column tableColumn) String() string {
	return column.Table + "." + column.Column
}

// SwallowedStatement is an additive statement that failed and was skipped.
type SwallowedStatement struct {
	Migration string
	Statement string
	Err       error
}

// MigrationReport describes one migration run.
type MigrationReport struct {
	Applied   []string
	Existing  []string
	Swallowed []SwallowedStatement
	Missing   []string
}

// Complete reports whether every required column exists.
func (report MigrationReport) Complete() bool {
	return len(report.Missing) == 0
}

func (report MigrationReport) String() string {
	parts := []string{fmt.Sprintf("%d migration(s) applied", len(report.Applied))}
	if len(report.Existing) > 0 {
		parts = append(parts, "already present: "+strings.Join(report.Existing, ", "))
	}
	if len(report.Swallowed) > 0 {
		parts = append(parts, fmt.Sprintf("%d additive statement(s) swallowed", len(report.Swallowed)))
	}
	if len(report.Missing) > 0 {
		parts = append(parts, "missing required: "+strings.Join(report.Missing, ", "))
	}
	return strings.Join(parts, "; ")
}

type sqlMigration struct {
	Version    string
	Order      int
	Name       string
	Statements []string
}

type schemaMigration struct {
	Version string `gorm:"primaryKey"`
	Name    string
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migrator struct {
	database *gorm.DB
	report   MigrationReport
}

func applyEmbeddedMigrations(database *gorm.DB) (MigrationReport, error) {
	return runMigrations(database, embeddedmigrations.Files)
}

func runMigrations(database *gorm.DB, files fs.FS) (MigrationReport, error) {
	runner := &migrator{database: database}

	if err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return runner.report, fmt.Errorf("create schema_migrations table: %w", err)
	}

	migrations, err := loadEmbeddedMigrations(files)
	if err != nil {
		return runner.report, err
	}

	var versions []string
	if err := database.Model(&schemaMigration{}).Pluck("version", &versions).Error; err != nil {
		return runner.report, fmt.Errorf("load applied migration versions: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, version := range versions {
		applied[version] = true
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := runner.apply(migration); err != nil {
			return runner.report, err
		}
		runner.report.Applied = append(runner.report.Applied, migration.Name)
	}

	if err := runner.checkRequired(requiredColumns); err != nil {
		return runner.report, err
	}
	return runner.report, nil
}

// apply runs one migration file in a transaction. An ADD COLUMN for a
// column that exists is skipped; one that fails is logged and swallowed.
// Any other failing statement aborts the file and leaves it unrecorded.
func (runner *migrator) apply(migration sqlMigration) error {
	if len(migration.Statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	return runner.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range migration.Statements {
			column, additive := parseAddColumn(statement)
			if !additive {
				if err := tx.Exec(statement).Error; err != nil {
					return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
				}
				continue
			}

			exists, err := columnExists(tx, column)
			if err == nil && exists {
				runner.report.Existing = append(runner.report.Existing, column.String())
				continue
			}
			if err == nil {
				err = tx.Exec(statement).Error
			}
			if err != nil {
				log.Printf("migration %s: additive statement %q failed, continuing: %v", migration.Name, statement, err)
				runner.report.Swallowed = append(runner.report.Swallowed, SwallowedStatement{
					Migration: migration.Name,
					Statement: statement,
					Err:       err,
				})
			}
		}

		return tx.Create(&schemaMigration{Version: migration.Version, Name: migration.Name}).Error
	})
}

func (runner *migrator) checkRequired(columns []tableColumn) error {
	for _, column := range columns {
		exists, err := columnExists(runner.database, column)
		if err != nil {
			return err
		}
		if !exists {
			runner.report.Missing = append(runner.report.Missing, column.String())
		}
	}
	return nil
}

// loadEmbeddedMigrations reads NNN_name.sql files in version order.
// Other files are ignored.
func loadEmbeddedMigrations(files fs.FS) ([]sqlMigration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(names))
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		order, err := strconv.Atoi(version)
		if err != nil {
			continue
		}
		if previous, duplicate := byVersion[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, previous, name)
		}
		byVersion[version] = name

		raw, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, sqlMigration{
			Version:    version,
			Order:      order,
			Name:       name,
			Statements: splitSQLStatements(string(raw)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// parseAddColumn recognizes `ALTER TABLE t ADD COLUMN c ...`.
func parseAddColumn(statement string) (tableColumn, bool) {
	fields := strings.Fields(statement)
	if len(fields) < 6 ||
		!strings.EqualFold(fields[0], "ALTER") ||
		!strings.EqualFold(fields[1], "TABLE") ||
		!strings.EqualFold(fields[3], "ADD") ||
		!strings.EqualFold(fields[4], "COLUMN") {
		return tableColumn{}, false
	}
	return tableColumn{Table: unquoteIdentifier(fields[2]), Column: unquoteIdentifier(fields[5])}, true
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(identifier, "\"`[]")
}

func columnExists(database *gorm.DB, column tableColumn) (bool, error) {
	var rows []struct {
		Name string `gorm:"column:name"`
	}
	query := fmt.Sprintf(`SELECT name FROM pragma_table_info('%s')`, strings.ReplaceAll(column.Table, "'", "''"))
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		return false, fmt.Errorf("inspect columns of %s: %w", column.Table, err)
	}
	for _, row := range rows {
		if strings.EqualFold(row.Name, column.Column) {
			return true, nil
		}
	}
	return false, nil
}
