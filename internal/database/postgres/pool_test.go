package postgres

import (
	"strings"
	"testing"
	"time"

	"careerboard/internal/config"
)

func TestPoolConfig_AdminDefaults(t *testing.T) {
	pcfg, err := poolConfig(config.DatabaseConfig{
		DBHost: "db.internal", DBName: "careerboard", DBUser: "app", DBPassword: "p@ss word", DBSSLMode: "disable",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if pcfg.MaxConns != adminMaxConns || pcfg.MinConns != 0 {
		t.Fatalf("unexpected sizing: max=%d min=%d", pcfg.MaxConns, pcfg.MinConns)
	}
	if pcfg.MaxConnIdleTime != adminMaxConnIdle {
		t.Fatalf("unexpected idle time: %v", pcfg.MaxConnIdleTime)
	}
	if pcfg.ConnConfig.ConnectTimeout != defaultConnectLimit {
		t.Fatalf("unexpected connect timeout: %v", pcfg.ConnConfig.ConnectTimeout)
	}
	cc := pcfg.ConnConfig
	if cc.Host != "db.internal" || cc.Port != 5432 || cc.Database != "careerboard" || cc.User != "app" {
		t.Fatalf("unexpected conn config: %+v", cc)
	}
	if cc.Password != "p@ss word" {
		t.Fatalf("password not preserved: %q", cc.Password)
	}
}

func TestPoolConfig_Overrides(t *testing.T) {
	pcfg, err := poolConfig(config.DatabaseConfig{
		DBHost: "localhost", DBPort: "6543", DBName: "cb",
		ConnectTimeout: 2 * time.Second,
		PoolMaxConns:   8,
		PoolMinConns:   20,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if pcfg.ConnConfig.Port != 6543 {
		t.Fatalf("unexpected port: %d", pcfg.ConnConfig.Port)
	}
	if pcfg.MaxConns != 8 || pcfg.MinConns != 8 {
		t.Fatalf("min must not exceed max: max=%d min=%d", pcfg.MaxConns, pcfg.MinConns)
	}
	if pcfg.ConnConfig.ConnectTimeout != 2*time.Second {
		t.Fatalf("unexpected connect timeout: %v", pcfg.ConnConfig.ConnectTimeout)
	}
}

func TestPoolConfig_RequiresHostAndName(t *testing.T) {
	_, err := poolConfig(config.DatabaseConfig{DBHost: "localhost"})
	if err == nil || !strings.Contains(err.Error(), "DB_NAME") {
		t.Fatalf("expected missing name error, got %v", err)
	}
}
