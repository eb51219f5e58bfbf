package migration

import (
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_OrdersAndSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"V2__add_index.sql":     {Data: []byte("CREATE INDEX x ON admins (name);")},
		"V1__create_admins.sql": {Data: []byte("CREATE TABLE admins (id UUID);")},
		"README.md":             {Data: []byte("notes")},
	}

	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 || migs[0].Version != 1 || migs[1].Name != "add_index" {
		t.Fatalf("unexpected migrations: %+v", migs)
	}
	if migs[0].Checksum == "" {
		t.Fatalf("expected checksum")
	}
}

func TestLoadMigrations_RejectsDuplicatesAndEmpty(t *testing.T) {
	dup := fstest.MapFS{
		"V1__a.sql":  {Data: []byte("SELECT 1;")},
		"V01__b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := loadMigrations(dup); err == nil {
		t.Fatalf("expected duplicate version error")
	}

	empty := fstest.MapFS{"V1__a.sql": {Data: []byte("  ")}}
	if _, err := loadMigrations(empty); err == nil {
		t.Fatalf("expected empty file error")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	migs, err := loadMigrations(sub)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) == 0 || migs[0].Name != "create_admins" {
		t.Fatalf("unexpected embedded migrations: %+v", migs)
	}
}
