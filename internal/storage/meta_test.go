package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupMetaStore(t *testing.T) *MetaStore {
	t.Helper()
	meta, err := OpenMeta(t.TempDir())
	if err != nil {
		t.Fatalf("OpenMeta: %v", err)
	}
	t.Cleanup(func() { meta.Close() })
	return meta
}

func TestOpenMetaCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	meta, err := OpenMeta(dir)
	if err != nil {
		t.Fatalf("OpenMeta: %v", err)
	}
	defer meta.Close()

	for _, sub := range []string{"banks", "archive"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", sub)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "_meta.db")); err != nil {
		t.Errorf("expected _meta.db to exist: %v", err)
	}
}

func TestCreateAndGetBank(t *testing.T) {
	meta := setupMetaStore(t)

	bank, err := meta.CreateBank("work-notes", "Notes from work sessions")
	if err != nil {
		t.Fatalf("CreateBank: %v", err)
	}
	if bank.ID == "" {
		t.Error("bank ID should not be empty")
	}
	if bank.Status != "active" {
		t.Errorf("Status = %q, want active", bank.Status)
	}
	if !strings.HasSuffix(bank.GraphPath, ".jsonl") {
		t.Errorf("GraphPath = %q, want a .jsonl file", bank.GraphPath)
	}

	got, err := meta.GetBankByName("work-notes")
	if err != nil {
		t.Fatalf("GetBankByName: %v", err)
	}
	if got.ID != bank.ID {
		t.Errorf("ID = %q, want %q", got.ID, bank.ID)
	}

	byID, err := meta.GetBankByID(bank.ID)
	if err != nil {
		t.Fatalf("GetBankByID: %v", err)
	}
	if byID.Name != "work-notes" {
		t.Errorf("Name = %q, want work-notes", byID.Name)
	}
}

func TestCreateBankDuplicateName(t *testing.T) {
	meta := setupMetaStore(t)

	if _, err := meta.CreateBank("dup", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := meta.CreateBank("dup", ""); err == nil {
		t.Error("expected error creating bank with duplicate name")
	}
}

func TestGetBankNotFound(t *testing.T) {
	meta := setupMetaStore(t)

	if _, err := meta.GetBankByName("nope"); err == nil {
		t.Error("expected error for nonexistent bank")
	}
}

func TestListBanks(t *testing.T) {
	meta := setupMetaStore(t)

	meta.CreateBank("alpha", "")
	meta.CreateBank("beta", "")
	if _, err := meta.ArchiveBank("beta"); err != nil {
		t.Fatalf("ArchiveBank: %v", err)
	}

	active, err := meta.ListBanks("active")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Name != "alpha" {
		t.Errorf("active banks = %+v, want just alpha", active)
	}

	archived, err := meta.ListBanks("archived")
	if err != nil {
		t.Fatal(err)
	}
	if len(archived) != 1 || archived[0].Name != "beta" {
		t.Errorf("archived banks = %+v, want just beta", archived)
	}

	all, err := meta.ListBanks("all")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all banks = %d, want 2", len(all))
	}
}

func TestArchiveAndRestoreBank(t *testing.T) {
	meta := setupMetaStore(t)

	bank, err := meta.CreateBank("project", "")
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a persisted graph so archiving has a file to move
	graphFile := meta.BankGraphPath(bank)
	if err := os.WriteFile(graphFile, []byte(`{"type":"entity","name":"A","entityType":"thing","observations":[]}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	archived, err := meta.ArchiveBank("project")
	if err != nil {
		t.Fatalf("ArchiveBank: %v", err)
	}
	if archived.Status != "archived" {
		t.Errorf("Status = %q, want archived", archived.Status)
	}
	if !strings.HasPrefix(archived.GraphPath, "archive") {
		t.Errorf("GraphPath = %q, want it under archive/", archived.GraphPath)
	}
	if _, err := os.Stat(meta.BankGraphPath(archived)); err != nil {
		t.Errorf("archived graph file should exist: %v", err)
	}
	if _, err := os.Stat(graphFile); !os.IsNotExist(err) {
		t.Errorf("original graph file should be gone")
	}

	// Archiving twice fails
	if _, err := meta.ArchiveBank("project"); err == nil {
		t.Error("expected error archiving an archived bank")
	}

	restored, err := meta.RestoreBank("project")
	if err != nil {
		t.Fatalf("RestoreBank: %v", err)
	}
	if restored.Status != "active" {
		t.Errorf("Status = %q, want active", restored.Status)
	}
	if !strings.HasPrefix(restored.GraphPath, "banks") {
		t.Errorf("GraphPath = %q, want it back under banks/", restored.GraphPath)
	}
	if _, err := os.Stat(meta.BankGraphPath(restored)); err != nil {
		t.Errorf("restored graph file should exist: %v", err)
	}

	// Restoring an active bank fails
	if _, err := meta.RestoreBank("project"); err == nil {
		t.Error("expected error restoring an active bank")
	}
}

func TestArchiveBankWithoutGraphFile(t *testing.T) {
	meta := setupMetaStore(t)

	// The graph file is created lazily; archiving before any write must work
	if _, err := meta.CreateBank("empty", ""); err != nil {
		t.Fatal(err)
	}
	bank, err := meta.ArchiveBank("empty")
	if err != nil {
		t.Fatalf("ArchiveBank: %v", err)
	}
	if bank.Status != "archived" {
		t.Errorf("Status = %q, want archived", bank.Status)
	}
}

func TestDeleteBank(t *testing.T) {
	meta := setupMetaStore(t)

	bank, err := meta.CreateBank("doomed", "")
	if err != nil {
		t.Fatal(err)
	}
	graphFile := meta.BankGraphPath(bank)
	if err := os.WriteFile(graphFile, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := meta.DeleteBank("doomed"); err != nil {
		t.Fatalf("DeleteBank: %v", err)
	}
	if _, err := meta.GetBankByName("doomed"); err == nil {
		t.Error("deleted bank should not be found")
	}
	if _, err := os.Stat(graphFile); !os.IsNotExist(err) {
		t.Error("graph file should be removed with the bank")
	}

	if err := meta.DeleteBank("doomed"); err == nil {
		t.Error("expected error deleting a nonexistent bank")
	}
}

func TestEnsureDefaultBank(t *testing.T) {
	meta := setupMetaStore(t)

	first, err := meta.EnsureDefaultBank()
	if err != nil {
		t.Fatalf("EnsureDefaultBank: %v", err)
	}
	if first.Name != DefaultBankName {
		t.Errorf("Name = %q, want %q", first.Name, DefaultBankName)
	}

	second, err := meta.EnsureDefaultBank()
	if err != nil {
		t.Fatalf("EnsureDefaultBank (second): %v", err)
	}
	if second.ID != first.ID {
		t.Error("EnsureDefaultBank should be idempotent")
	}

	banks, err := meta.ListBanks("all")
	if err != nil {
		t.Fatal(err)
	}
	if len(banks) != 1 {
		t.Errorf("banks = %d, want 1", len(banks))
	}
}
