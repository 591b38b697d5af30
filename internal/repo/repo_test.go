package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://github.com/acme/legacy-billing", true},
		{"https://github.com/acme/legacy-billing.git", true},
		{"https://github.com/acme/legacy-billing/", true},
		{"http://github.com/acme/legacy-billing", false},
		{"https://gitlab.com/acme/legacy-billing", false},
		{"https://github.com/acme", false},
		{"git@github.com:acme/legacy-billing.git", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if tt.valid && err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
		}
	}
}

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/legacy-billing", "legacy-billing"},
		{"https://github.com/acme/legacy-billing.git", "legacy-billing"},
		{"https://github.com/acme/legacy-billing/", "legacy-billing"},
	}
	for _, tt := range tests {
		if got := NameFromURL(tt.url); got != tt.want {
			t.Errorf("NameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestCheckoutPathKeyedByID(t *testing.T) {
	// github.com/acme/tool and github.com/globex/tool share a display name;
	// their checkouts must not share a directory.
	a := CheckoutPath("/tmp/work", "repo_a1")
	b := CheckoutPath("/tmp/work", "repo_b2")
	if a == b {
		t.Fatalf("CheckoutPath collided: %q", a)
	}
	if filepath.Dir(a) != "/tmp/work" {
		t.Errorf("CheckoutPath dir = %q, want /tmp/work", filepath.Dir(a))
	}
}

func TestListSourceFiles(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/main.c":          "int main(void) { return 0; }",
		"src/util.h":          "#define MAX 10",
		"jobs/report.sas":     "proc print; run;",
		"README.md":           "readme",
		".git/objects/aa/bbb": "binary",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	found, err := ListSourceFiles(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{
		filepath.Join("src", "main.c"):      true,
		filepath.Join("src", "util.h"):      true,
		filepath.Join("jobs", "report.sas"): true,
	}
	if len(found) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(found), found)
	}
	for _, f := range found {
		if !want[f] {
			t.Errorf("unexpected file %q", f)
		}
	}
}
