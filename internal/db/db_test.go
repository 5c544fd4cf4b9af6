package db

import (
	"strings"
	"testing"

	"github.com/fixlater/fixlater-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{
		DBUser:     "app",
		DBPassword: "pw",
		DBName:     "fixlater",
		DBPort:     "3306",
	}

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantAddr string
	}{
		{"bare host", func(c *config.Config) { c.DBHost = "db.internal" }, "@tcp(db.internal:3306)/"},
		{"wrapped tcp", func(c *config.Config) { c.DBHost = "tcp(10.0.0.5:3307)" }, "@tcp(10.0.0.5:3307)/"},
		{"socket path", func(c *config.Config) { c.DBHost = "/var/run/mysqld/mysqld.sock" }, "@unix(/var/run/mysqld/mysqld.sock)/"},
		{"cloud sql wins", func(c *config.Config) {
			c.DBHost = "db.internal"
			c.InstanceConnectionName = "proj:region:db"
		}, "@unix(/cloudsql/proj:region:db)/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			dsn := BuildDSN(&cfg)
			if !strings.HasPrefix(dsn, "app:pw@") {
				t.Fatalf("credentials missing: %s", dsn)
			}
			if !strings.Contains(dsn, tt.wantAddr) {
				t.Fatalf("dsn=%q want address %q", dsn, tt.wantAddr)
			}
			if !strings.Contains(dsn, "parseTime=True") || !strings.Contains(dsn, "loc=UTC") {
				t.Fatalf("time options missing: %s", dsn)
			}
		})
	}
}
