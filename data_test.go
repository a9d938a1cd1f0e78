package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadData(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"site.yaml":     "title: Inkpot\nauthors:\n  - Jane\n",
		"links.json":    `{"home": "https://example.com"}`,
		"settings.toml": "per_page = 10\n",
		"site.json":     `{"title": "ignored"}`,
		"README.md":     "not data",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	data, err := readData(dir)
	if err != nil {
		t.Fatal(err)
	}

	expected := map[string]any{
		"links":    map[string]any{"home": "https://example.com"},
		"settings": map[string]any{"per_page": int64(10)},
	}
	site, ok := data["site"].(map[string]any)
	if !ok {
		t.Fatalf("expected site data to be a map, got %T", data["site"])
	}
	// site.json sorts first, so site.yaml is the duplicate
	if site["title"] != "ignored" {
		t.Errorf("expected %v, got %v", "ignored", site["title"])
	}
	delete(data, "site")
	if diff := cmp.Diff(expected, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDataSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"site.bak":  "stale backup",
		"site.yaml": "title: Inkpot\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	data, err := readData(dir)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]any{"site": map[string]any{"title": "Inkpot"}}
	if diff := cmp.Diff(expected, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDataMissingDir(t *testing.T) {
	data, err := readData(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected no data, got %v", data)
	}
}

func TestReadDataInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := readData(dir); err == nil {
		t.Error("expected an error for invalid data")
	}
}
