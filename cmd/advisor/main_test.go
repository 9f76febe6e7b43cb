package main

import (
	"os"
	"path/filepath"
	"testing"

	"rulebase-advisor/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	if cmd == nil {
		t.Fatal("newRootCmd returned nil")
	}
	if cmd.Use != "rulebase-advisor" {
		t.Errorf("Expected use 'rulebase-advisor', got '%s'", cmd.Use)
	}
}

func TestSetupLogger(t *testing.T) {
	levels := []string{"DEBUG", "INFO", "WARN", "ERROR", "UNKNOWN"}
	for _, lvl := range levels {
		if l := setupLogger(lvl, ""); l == nil {
			t.Errorf("setupLogger(%q) returned nil", lvl)
		}
	}
}

func TestApplyConfigFlagsWin(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("provider", "mariadb"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	provider = "mariadb"
	outDir = "."

	cfg := config.Default()
	cfg.Provider = "csv"
	cfg.OutputDir = "/tmp/from-config"
	applyConfig(cmd, cfg)

	if provider != "mariadb" {
		t.Errorf("explicit flag must win, got provider %q", provider)
	}
	if outDir != "/tmp/from-config" {
		t.Errorf("unset flag must take the config value, got %q", outDir)
	}
}

func TestLoadRulebaseCSVProvider(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.csv")
	fixture := "Name,Source Zone,Destination Zone,Application,Service,Action,Rule Usage Hit Count\n" +
		"allow-web,trust,untrust,web-browsing,service-http,allow,10\n" +
		"stale,trust,untrust,ftp,any,allow,0\n"
	if err := os.WriteFile(rulesPath, []byte(fixture), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	rules, hits, source, err := loadRulebase("csv", rulesPath, "", "")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if len(rules) != 2 || len(hits) != 0 {
		t.Fatalf("unexpected load result: %d rules, %d hits", len(rules), len(hits))
	}
	if source != "CSV Import: "+rulesPath {
		t.Errorf("unexpected source label %q", source)
	}
}

func TestLoadRulebaseValidation(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"csv without rules file", "csv"},
		{"mariadb without dsn", "mariadb"},
		{"unknown provider", "panorama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := loadRulebase(tt.provider, "", "", ""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
