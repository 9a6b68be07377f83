package db

import (
	"errors"
	"testing"
	"time"
)

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := Connect("mysql", "root@/swiss", time.Second)
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("Connect(mysql) err = %v; want ErrUnsupportedDriver", err)
	}
}

func TestMigrateSQLite(t *testing.T) {
	conn, err := Connect(DriverSQLite, "file:migrate_test?mode=memory&_foreign_keys=on", time.Second)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer conn.Close()

	version, err := Migrate(conn, DriverSQLite)
	if err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d; want 1", version)
	}

	// Second run has nothing to do and must not fail.
	version, err = Migrate(conn, DriverSQLite)
	if err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version after rerun = %d; want 1", version)
	}

	for _, table := range []string{"players", "matches"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMigrateUnsupportedDriver(t *testing.T) {
	conn, err := Connect(DriverSQLite, "file:migrate_bad_driver?mode=memory", time.Second)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer conn.Close()

	if _, err := Migrate(conn, "oracle"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Migrate(oracle) err = %v; want ErrUnsupportedDriver", err)
	}
}

func TestConnectSQLiteEnforcesForeignKeys(t *testing.T) {
	dsns := map[string]string{
		"no query":     "file:" + t.TempDir() + "/swiss.db",
		"no flag":      "file:fk_no_flag?mode=memory",
		"explicit off": "file:fk_off?mode=memory&_foreign_keys=off",
		"short off":    "file:fk_short_off?mode=memory&_fk=0",
	}
	for name, dsn := range dsns {
		t.Run(name, func(t *testing.T) {
			conn, err := Connect(DriverSQLite, dsn, time.Second)
			if err != nil {
				t.Fatalf("Connect(%q) returned error: %v", dsn, err)
			}
			defer conn.Close()

			var enabled int
			if err := conn.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
				t.Fatalf("PRAGMA foreign_keys: %v", err)
			}
			if enabled != 1 {
				t.Fatalf("foreign_keys = %d; want 1", enabled)
			}

			if _, err := Migrate(conn, DriverSQLite); err != nil {
				t.Fatalf("Migrate returned error: %v", err)
			}
			var playerID int
			if err := conn.QueryRow(`INSERT INTO players (name) VALUES ($1) RETURNING id`, "A").Scan(&playerID); err != nil {
				t.Fatalf("insert player: %v", err)
			}
			if _, err := conn.Exec(`INSERT INTO matches (winner, loser) VALUES ($1, $2)`, playerID, playerID+999); err == nil {
				t.Error("match against an unknown player was accepted")
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"swiss.db":                         "swiss.db?_foreign_keys=on",
		"file:t?mode=memory":               "file:t?_foreign_keys=on&mode=memory",
		"file:t?_fk=off&cache=shared":      "file:t?_foreign_keys=on&cache=shared",
		"file:t?_foreign_keys=on":          "file:t?_foreign_keys=on",
		"file:t?mode=memory&_foreign_keys": "file:t?_foreign_keys=on&mode=memory",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q; want %q", in, got, want)
		}
	}
}
