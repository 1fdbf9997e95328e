package data

import (
	"errors"
	"testing"
)

func TestBackupFilenameRoundTrip(t *testing.T) {
	name := backupFilenameMillis(1712345678901)
	if name != "config.backup.1712345678901.json" {
		t.Fatalf("got %s", name)
	}
	ms, ok := ParseBackupFilename(name)
	if !ok || ms != 1712345678901 {
		t.Fatalf("parse = %d, %v", ms, ok)
	}
}

func TestParseBackupFilename_Rejects(t *testing.T) {
	for _, name := range []string{
		"config.json",
		"config.backup.json",
		"config.backup..json",
		"config.backup.-1.json",
		"config.backup.1e3.json",
		"config.backup.12.json.bak",
		"backup.config.12.json",
		"config.backup.99999999999999999999999.json",
	} {
		if _, ok := ParseBackupFilename(name); ok {
			t.Fatalf("%q parsed as a backup name", name)
		}
	}
}

func TestValidateRestoreFilename(t *testing.T) {
	if _, err := validateRestoreFilename("config.backup.1.json"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	for _, name := range []string{`config.backup.1\..\x.json`, "config.backup.1/x.json", "/config.backup.1.json"} {
		if _, err := validateRestoreFilename(name); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%q: got %v", name, err)
		}
	}
}
