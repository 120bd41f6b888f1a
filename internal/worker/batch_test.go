package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

type mockRunner struct {
	fail map[string]bool
}

func (m *mockRunner) Run(ctx context.Context, questionID string, dryRun bool) (*model.RecalcSummary, error) {
	time.Sleep(5 * time.Millisecond)
	if m.fail[questionID] {
		return nil, errors.New("recalc error")
	}
	return &model.RecalcSummary{QuestionID: questionID, DryRun: dryRun}, nil
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ids.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessQuestions(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2)

	ids := []string{"q1", "q2", "q3"}
	results := processor.ProcessQuestions(context.Background(), ids, true)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.QuestionID != ids[i] {
			t.Errorf("result %d is for %s, want %s", i, res.QuestionID, ids[i])
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.QuestionID, res.Error)
		}
		if res.Summary == nil || !res.Summary.DryRun {
			t.Errorf("expected dry-run summary for %s", res.QuestionID)
		}
	}
}

func TestBatchProcessor_ProcessQuestions_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{fail: map[string]bool{"bad": true}}, 2)

	results := processor.ProcessQuestions(context.Background(), []string{"good", "bad"}, false)

	if results[0].Error != nil {
		t.Errorf("good question failed: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[1].Summary != nil {
		t.Error("expected nil summary on error")
	}
}

func TestBatchProcessor_ProcessQuestions_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2)

	results := processor.ProcessQuestions(context.Background(), nil, false)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_RunnerFunc(t *testing.T) {
	calls := 0
	runner := RunnerFunc(func(ctx context.Context, id string, dryRun bool) (*model.RecalcSummary, error) {
		calls++
		return &model.RecalcSummary{QuestionID: id}, nil
	})
	results := NewBatchProcessor(runner, 1).ProcessQuestions(context.Background(), []string{"q"}, false)
	if calls != 1 || results[0].Summary.QuestionID != "q" {
		t.Errorf("RunnerFunc not invoked correctly: calls=%d", calls)
	}
}

func TestReadIDsFromFile(t *testing.T) {
	path := writeTemp(t, "q1\n# comment\nq2\n   \n  q3   \nq1\n")

	ids, err := ReadIDsFromFile(path)
	if err != nil {
		t.Fatalf("ReadIDsFromFile failed: %v", err)
	}

	expected := []string{"q1", "q2", "q3"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d ids, got %d (%v)", len(expected), len(ids), ids)
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, id)
		}
	}
}

func TestReadIDsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadIDsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTemp(t, "q1\nq2\n# comment\n\nq3\n")

	results, err := NewBatchProcessor(&mockRunner{}, 2).ProcessFile(context.Background(), path, false)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	_, err := NewBatchProcessor(&mockRunner{}, 2).ProcessFile(context.Background(), "no_such_file.txt", false)
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
