package db

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/ehr/picker/migrations"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_doctors.sql":   {Data: []byte("CREATE TABLE doctor (id INT);")},
		"001_reference.sql": {Data: []byte("CREATE TABLE city (id INT);")},
		"010_late.sql":      {Data: []byte("SELECT 10;")},
	}

	got, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(got))
	}
	if got[0].Version != 1 || got[1].Version != 2 || got[2].Version != 10 {
		t.Errorf("expected versions 1,2,10 got %d,%d,%d", got[0].Version, got[1].Version, got[2].Version)
	}
	if got[0].SQL != "CREATE TABLE city (id INT);" {
		t.Errorf("unexpected SQL content: %s", got[0].SQL)
	}
}

func TestLoadMigrations_SkipsInvalidNames(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":          {Data: []byte("docs")},
		"noprefix.sql":       {Data: []byte("SELECT 1;")},
		"abc_letters.sql":    {Data: []byte("SELECT 1;")},
		"003_valid.sql":      {Data: []byte("SELECT 3;")},
		"sub/004_nested.sql": {Data: []byte("SELECT 4;")},
	}

	got, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "003_valid.sql" {
		t.Errorf("expected only 003_valid.sql, got %+v", got)
	}
}

func TestLoadMigrations_Embedded(t *testing.T) {
	got, err := NewMigrator(nil, migrations.FS).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(got) == 0 || got[0].Name != "001_reference.sql" {
		t.Fatalf("expected embedded 001_reference.sql first, got %+v", got)
	}
}

func TestPendingAndStatuses(t *testing.T) {
	migs := []Migration{{Version: 1, Name: "001_a.sql"}, {Version: 2, Name: "002_b.sql"}}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	applied := map[int]time.Time{1: at}

	p := pending(migs, applied)
	if len(p) != 1 || p[0].Version != 2 {
		t.Errorf("expected only version 2 pending, got %+v", p)
	}

	st := statuses(migs, applied)
	if !st[0].Applied || st[0].AppliedAt == nil || !st[0].AppliedAt.Equal(at) {
		t.Errorf("expected version 1 applied at %v, got %+v", at, st[0])
	}
	if st[1].Applied || st[1].AppliedAt != nil {
		t.Errorf("expected version 2 pending, got %+v", st[1])
	}
}
