package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunReturnsSetupErrors(t *testing.T) {
	dir := t.TempDir()

	badConfig := filepath.Join(dir, "config.json")
	if err := os.WriteFile(badConfig, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(badConfig, "", filepath.Join(dir, "prefs.json"), "", 64, 64); err == nil {
		t.Error("expected an error for an unreadable config")
	}

	badPrefs := filepath.Join(dir, "prefs.json")
	if err := os.WriteFile(badPrefs, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run("", "", badPrefs, "", 64, 64); err == nil {
		t.Error("expected an error for malformed preferences")
	}
}
