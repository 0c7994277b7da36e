package application_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/onsite/pkg/application"
	"github.com/felixgeelhaar/onsite/pkg/storage"
)

func TestAuditService_Log(t *testing.T) {
	tempDir := t.TempDir()

	repo := storage.NewFilesystemRepository(tempDir)
	_ = repo.Initialize()
	service := application.NewAuditService(repo)

	if err := service.Log("test.action", "tester", map[string]interface{}{"key": "val"}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tempDir, ".onsite", "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "test.action") {
		t.Error("Event not logged")
	}
}

func TestAuditService_ChainAndIntegrity(t *testing.T) {
	repo := storage.NewFilesystemRepository(t.TempDir())
	_ = repo.Initialize()
	service := application.NewAuditService(repo)

	for i := 0; i < 3; i++ {
		if err := service.Log("feed.ingested", "system", map[string]interface{}{"index": i}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	timeline, err := service.GetTimeline()
	if err != nil {
		t.Fatalf("GetTimeline failed: %v", err)
	}
	if len(timeline) != 3 {
		t.Fatalf("expected 3 events, got %d", len(timeline))
	}
	if timeline[1].PrevHash != timeline[0].Hash {
		t.Error("hash chain broken between events 0 and 1")
	}

	violations, err := service.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity failed: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("expected intact chain, got %v", violations)
	}
}
