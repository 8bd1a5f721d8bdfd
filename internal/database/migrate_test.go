package database

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE TABLE b (y INT);\n")
	want := []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitStatements = %q, want %q", got, want)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least two migrations, got %d", len(entries))
	}
	if entries[0].Name() != "001_accounts.sql" {
		t.Fatalf("first migration = %s", entries[0].Name())
	}
}

// Location columns are compared byte for byte in Go, so MySQL must not
// fold case or accents when filtering on them.
func TestLocationColumnsUseBinaryCollation(t *testing.T) {
	for file, column := range map[string]string{
		"001_accounts.sql": "location      VARCHAR(120) COLLATE utf8mb4_bin",
		"002_bookings.sql": "selected_location VARCHAR(120) COLLATE utf8mb4_bin",
	} {
		data, err := migrationFS.ReadFile("migrations/" + file)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), column) {
			t.Errorf("%s: expected %q", file, column)
		}
	}
}
