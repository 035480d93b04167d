package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/jsondo/pkg/adapters/bus"
	"github.com/aretw0/jsondo/pkg/core"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	svc, err := New(path, WithStrict(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected storage file to be created: %v", err)
	}

	out, err := svc.Do(context.Background(), core.Action{Path: core.MustParsePath("a.b"), Todo: core.TodoInit})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if out != core.Applied {
		t.Errorf("expected applied, got %s", out)
	}
}

func TestNew_PreservesUntouchedNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte(`{"id": 12345678901234567891, "ratio": 1.0}`), 0644); err != nil {
		t.Fatal(err)
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := svc.Do(context.Background(), core.Action{Path: core.MustParsePath("x"), Todo: core.TodoInit}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"id\": 12345678901234567891,\n  \"ratio\": 1.0,\n  \"x\": {}\n}"
	if string(data) != want {
		t.Errorf("expected\n%s\ngot\n%s", want, data)
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNew_WithNotify(t *testing.T) {
	b := bus.New(0, nil)
	svc, err := New(filepath.Join(t.TempDir(), "storage.json"), WithNotify(b))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := svc.Do(context.Background(), core.Action{Path: core.MustParsePath("x"), Todo: core.TodoInit}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if state := b.State().(bus.BusState); state.Queued != 1 {
		t.Errorf("expected one queued update, got %d", state.Queued)
	}
}

func TestInit_WithFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if _, err := Init(path, WithFileMode(0600)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("File permissions: %v", info.Mode())
}
