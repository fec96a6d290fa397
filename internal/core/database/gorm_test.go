package database

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass string
		want                 []string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
			want: []string{"root:pw@tcp(127.0.0.1:3306)/app?parseTime=true"},
		},
		{
			name: "url form",
			in:   "mysql://root:pw@db:3306/app",
			want: []string{"root:pw@tcp(db:3306)/app?", "parseTime=true", "charset=utf8mb4"},
		},
		{
			name: "jdbc with overrides",
			in:   "jdbc:mysql://db:3306/app?useSSL=false&characterEncoding=utf8&useUnicode=true",
			user: "svc", pass: "secret",
			want: []string{"svc:secret@tcp(db:3306)/app?", "charset=utf8", "tls=false"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeMySQLDSN(tc.in, tc.user, tc.pass)
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("dsn %q missing %q", got, w)
				}
			}
			if strings.Contains(got, "useUnicode") || strings.Contains(got, "useSSL") {
				t.Errorf("jdbc params leaked: %q", got)
			}
		})
	}
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestNewGorm_SqliteMigrate(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:?_pragma=foreign_keys(1)", MaxOpenConns: 1, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"users", "events", "presenters", "participants", "certificates"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing", table)
		}
	}
}
