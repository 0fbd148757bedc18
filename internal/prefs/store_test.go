package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestGetMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	v, ok, err := s.Get("companion-language")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("expected unset value, got %q ok=%v", v, ok)
	}
}

func TestSetGetRemove(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "prefs.json"))

	if err := s.Set("companion-language", "ja"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get("companion-language")
	if err != nil || !ok || v != "ja" {
		t.Fatalf("Get after Set: %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Remove("companion-language"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get("companion-language"); ok {
		t.Fatal("expected key removed")
	}

	if err := s.Remove("companion-language"); err != nil {
		t.Fatalf("removing a missing key should not fail: %v", err)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s1 := NewStore(path)
	if err := s1.Set("companion-language", "en-US"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s1.Set("other", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s2 := NewStore(path)
	v, ok, err := s2.Get("companion-language")
	if err != nil || !ok || v != "en-US" {
		t.Fatalf("reloaded value: %q ok=%v err=%v", v, ok, err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if _, _, err := s.Get("companion-language"); err == nil {
		t.Fatal("expected error for corrupt preferences file")
	}
}

func TestForeignKeysSurvive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`{"window":{"x":10,"y":20},"companion-language":"en"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Set("companion-language", "ja"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("model.name", "shizuku"); err != nil {
		t.Fatalf("Set dotted key: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"window":{"x":10,"y":20}`, `"companion-language":"ja"`, `"model.name":"shizuku"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("file %s missing %s", data, want)
		}
	}

	v, ok, err := NewStore(path).Get("model.name")
	if err != nil || !ok || v != "shizuku" {
		t.Fatalf("dotted key round trip: %q ok=%v err=%v", v, ok, err)
	}
}

func TestNonObjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`["ja"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewStore(path).Set("companion-language", "ja"); err == nil {
		t.Fatal("expected error for non-object preferences file")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefs.json"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set("k", "v")
			_, _, _ = s.Get("k")
		}()
	}
	wg.Wait()

	if v, ok, _ := s.Get("k"); !ok || v != "v" {
		t.Fatalf("expected k=v, got %q ok=%v", v, ok)
	}
}
