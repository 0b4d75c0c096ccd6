package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestDumpCollectsChainAndCode(t *testing.T) {
	err := fmt.Errorf("create product: %w", Wrap(CodeConflict, fmt.Errorf("insert"), "name taken"))

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %q", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
}

func TestDumpExtractsPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "products_name_key",
		TableName:      "products",
		Message:        "duplicate key value violates unique constraint",
	}

	dump := Dump(fmt.Errorf("insert: %w", pgErr))
	if dump.PGCode != "23505" {
		t.Fatalf("expected pg code 23505, got %q", dump.PGCode)
	}
	if dump.PGConstraint != "products_name_key" {
		t.Fatalf("unexpected constraint %q", dump.PGConstraint)
	}
	if dump.PGTable != "products" {
		t.Fatalf("unexpected table %q", dump.PGTable)
	}
}

func TestDumpNil(t *testing.T) {
	if dump := Dump(nil); dump.TopMessage != "" || dump.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", dump)
	}
}

func TestDumpExtractsSQLiteDiagnostics(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}

	dump := Dump(fmt.Errorf("insert inventory: %w", liteErr))
	if dump.SQLiteCode == "" {
		t.Fatalf("expected sqlite code, got %+v", dump)
	}
	if dump.PGCode != "" {
		t.Fatalf("did not expect postgres fields, got %q", dump.PGCode)
	}
}
