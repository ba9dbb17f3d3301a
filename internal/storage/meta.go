package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/graphkeep/graphkeep/internal/models"
)

// DefaultBankName is the bank created and selected on first run so the
// knowledge tools work without any bank-management call.
const DefaultBankName = "default"

// MetaStore manages the central _meta.db database that tracks all banks.
type MetaStore struct {
	db      *sql.DB
	dataDir string
}

// OpenMeta opens (or creates) the _meta.db database and runs migrations.
func OpenMeta(dataDir string) (*MetaStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "banks"), 0o755); err != nil {
		return nil, fmt.Errorf("create banks dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "archive"), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "_meta.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open meta db: %w", err)
	}

	if _, err := db.Exec(MetaSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate meta db: %w", err)
	}

	return &MetaStore{db: db, dataDir: dataDir}, nil
}

// Close closes the database connection.
func (m *MetaStore) Close() error {
	return m.db.Close()
}

// DataDir returns the base data directory.
func (m *MetaStore) DataDir() string {
	return m.dataDir
}

// CreateBank registers a new bank. The graph file is created lazily on the
// bank's first mutation; an absent file reads as an empty graph.
func (m *MetaStore) CreateBank(name, description string) (*models.Bank, error) {
	id := uuid.New().String()
	graphPath := filepath.Join("banks", id+".jsonl")

	_, err := m.db.Exec(
		`INSERT INTO banks (id, name, description, graph_path, status) VALUES (?, ?, ?, ?, 'active')`,
		id, name, description, graphPath,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bank: %w", err)
	}

	return m.GetBankByName(name)
}

// GetBankByName looks up a bank by its unique name.
func (m *MetaStore) GetBankByName(name string) (*models.Bank, error) {
	row := m.db.QueryRow(
		`SELECT id, name, description, graph_path, status, created_at, updated_at FROM banks WHERE name = ?`,
		name,
	)
	return scanBank(row)
}

// GetBankByID looks up a bank by its UUID.
func (m *MetaStore) GetBankByID(id string) (*models.Bank, error) {
	row := m.db.QueryRow(
		`SELECT id, name, description, graph_path, status, created_at, updated_at FROM banks WHERE id = ?`,
		id,
	)
	return scanBank(row)
}

// ListBanks returns banks filtered by status. Use "all" for no filter.
func (m *MetaStore) ListBanks(status string) ([]models.Bank, error) {
	var rows *sql.Rows
	var err error

	if status == "all" {
		rows, err = m.db.Query(
			`SELECT id, name, description, graph_path, status, created_at, updated_at FROM banks ORDER BY name`,
		)
	} else {
		rows, err = m.db.Query(
			`SELECT id, name, description, graph_path, status, created_at, updated_at FROM banks WHERE status = ? ORDER BY name`,
			status,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var banks []models.Bank
	for rows.Next() {
		var b models.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.GraphPath, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// ArchiveBank archives a bank: sets status to 'archived' and moves its graph
// file from banks/ to archive/. A bank that never persisted anything has no
// file yet, which is fine.
func (m *MetaStore) ArchiveBank(name string) (*models.Bank, error) {
	bank, err := m.GetBankByName(name)
	if err != nil {
		return nil, err
	}
	if bank.Status == "archived" {
		return nil, fmt.Errorf("bank %q is already archived", name)
	}

	oldPath := filepath.Join(m.dataDir, bank.GraphPath)
	newRelPath := filepath.Join("archive", filepath.Base(bank.GraphPath))
	newPath := filepath.Join(m.dataDir, newRelPath)

	moved := true
	if err := os.Rename(oldPath, newPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("move graph file to archive: %w", err)
		}
		moved = false
	}

	_, err = m.db.Exec(
		`UPDATE banks SET status = 'archived', graph_path = ?, updated_at = datetime('now') WHERE name = ?`,
		newRelPath, name,
	)
	if err != nil {
		if moved {
			os.Rename(newPath, oldPath)
		}
		return nil, fmt.Errorf("update bank status: %w", err)
	}

	return m.GetBankByName(name)
}

// RestoreBank restores an archived bank back to active status, moving its
// graph file back under banks/.
func (m *MetaStore) RestoreBank(name string) (*models.Bank, error) {
	bank, err := m.GetBankByName(name)
	if err != nil {
		return nil, err
	}
	if bank.Status != "archived" {
		return nil, fmt.Errorf("bank %q is not archived", name)
	}

	oldPath := filepath.Join(m.dataDir, bank.GraphPath)
	newRelPath := filepath.Join("banks", filepath.Base(bank.GraphPath))
	newPath := filepath.Join(m.dataDir, newRelPath)

	moved := true
	if err := os.Rename(oldPath, newPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("move graph file from archive: %w", err)
		}
		moved = false
	}

	_, err = m.db.Exec(
		`UPDATE banks SET status = 'active', graph_path = ?, updated_at = datetime('now') WHERE name = ?`,
		newRelPath, name,
	)
	if err != nil {
		if moved {
			os.Rename(newPath, oldPath)
		}
		return nil, fmt.Errorf("update bank status: %w", err)
	}

	return m.GetBankByName(name)
}

// DeleteBank permanently removes a bank record and its graph file.
func (m *MetaStore) DeleteBank(name string) error {
	bank, err := m.GetBankByName(name)
	if err != nil {
		return err
	}

	// Remove graph file (ignore error if already gone)
	os.Remove(filepath.Join(m.dataDir, bank.GraphPath))

	_, err = m.db.Exec(`DELETE FROM banks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete bank record: %w", err)
	}
	return nil
}

// BankGraphPath returns the absolute path to a bank's graph file.
func (m *MetaStore) BankGraphPath(bank *models.Bank) string {
	return filepath.Join(m.dataDir, bank.GraphPath)
}

// EnsureDefaultBank creates the default bank if it does not exist yet.
func (m *MetaStore) EnsureDefaultBank() (*models.Bank, error) {
	bank, err := m.GetBankByName(DefaultBankName)
	if err == nil {
		return bank, nil
	}
	return m.CreateBank(DefaultBankName, "Default memory bank")
}

// scanBank scans a single bank row.
func scanBank(row *sql.Row) (*models.Bank, error) {
	var b models.Bank
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.GraphPath, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bank not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan bank: %w", err)
	}
	return &b, nil
}
