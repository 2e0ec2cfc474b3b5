package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: templates and occurrences",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS recurring_templates (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					property_id TEXT,
					account_id TEXT,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					direction TEXT NOT NULL DEFAULT 'expense',
					frequency TEXT NOT NULL,
					anchor_day_of_week INTEGER,
					anchor_day_of_month INTEGER,
					amount REAL NOT NULL,
					amount_tolerance REAL NOT NULL DEFAULT 5.0,
					date_tolerance_days INTEGER NOT NULL DEFAULT 3,
					alert_delay_days INTEGER NOT NULL DEFAULT 3,
					start_date DATETIME NOT NULL,
					end_date DATETIME,
					is_active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_templates_owner ON recurring_templates(owner_id)`,
				`CREATE INDEX idx_templates_active ON recurring_templates(is_active)`,

				`CREATE TABLE IF NOT EXISTS expected_occurrences (
					id TEXT PRIMARY KEY,
					template_id TEXT NOT NULL,
					owner_id TEXT NOT NULL,
					property_id TEXT,
					due_date DATETIME NOT NULL,
					amount REAL NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending',
					matched_transaction_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (template_id) REFERENCES recurring_templates(id),
					UNIQUE (template_id, due_date)
				)`,
				`CREATE INDEX idx_occurrences_template ON expected_occurrences(template_id)`,
				`CREATE INDEX idx_occurrences_status ON expected_occurrences(status)`,
				`CREATE INDEX idx_occurrences_due ON expected_occurrences(due_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Ledger transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					owner_id TEXT NOT NULL,
					property_id TEXT,
					account_id TEXT,
					date DATETIME NOT NULL,
					amount REAL NOT NULL,
					category TEXT,
					description TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_owner_date ON transactions(owner_id, date)`,
				`CREATE INDEX idx_transactions_property ON transactions(property_id)`,
				`CREATE INDEX idx_transactions_hash ON transactions(hash)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index matched transactions for unmatched-candidate queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_occurrences_matched_txn
				ON expected_occurrences(matched_transaction_id)
				WHERE matched_transaction_id IS NOT NULL`)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies any outstanding schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
