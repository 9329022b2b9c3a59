package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"socialpulse/internal/domain/profile"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_LoadsJSONDocuments(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.json")
	trackPath := filepath.Join(dir, "track_x.json")

	writeFile(t, profilePath, `{
		"name": "Acme Chain",
		"short_description": "A fast chain",
		"core_value": "speed",
		"unique_components": ["Rollups: cheap execution", "Bridge"],
		"hashtags": ["#Layer2", "#DeFi"],
		"keywords": ["scaling"]
	}`)
	writeFile(t, trackPath, `{"accounts": [{"handle": "@OpenSourceOrg", "description": "OSI"}, {"handle": ""}]}`)

	store := NewFileStore(profilePath, trackPath)

	p, err := store.LoadProfile(context.Background())
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}
	if p.Name != "Acme Chain" || p.CoreValue != "speed" {
		t.Errorf("profile = %+v", p)
	}
	if !reflect.DeepEqual(p.Hashtags, []string{"layer2", "defi"}) {
		t.Errorf("hashtags should be normalized, got %v", p.Hashtags)
	}
	if !reflect.DeepEqual(p.ComponentLabels(), []string{"Rollups", "Bridge"}) {
		t.Errorf("component labels = %v", p.ComponentLabels())
	}

	accounts, err := store.LoadAccounts(context.Background())
	if err != nil {
		t.Fatalf("LoadAccounts() error: %v", err)
	}
	want := []profile.TrackedAccount{{Handle: "OpenSourceOrg", Description: "OSI"}}
	if !reflect.DeepEqual(accounts, want) {
		t.Errorf("accounts = %+v, want %+v", accounts, want)
	}
}

func TestFileStore_LoadsYAMLDocuments(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.yaml")
	trackPath := filepath.Join(dir, "track.yml")

	writeFile(t, profilePath, strings.Join([]string{
		"name: Acme Chain",
		"keywords:",
		"  - scaling",
		"hashtags:",
		"  - '#NFT'",
	}, "\n"))
	writeFile(t, trackPath, "accounts:\n  - handle: alice\n  - handle: '@bob'\n    description: builder\n")

	store := NewFileStore(profilePath, trackPath)

	p, err := store.LoadProfile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.SearchQuery() != "#nft OR scaling" {
		t.Errorf("search query = %q", p.SearchQuery())
	}

	accounts, err := store.LoadAccounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 || accounts[1].Handle != "bob" || accounts[1].Description != "builder" {
		t.Errorf("accounts = %+v", accounts)
	}
}

func TestFileStore_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "none.json"), filepath.Join(dir, "none_track.json"))

	p, err := store.LoadProfile(context.Background())
	if err != nil || p != nil {
		t.Errorf("missing profile should give nil, nil; got %+v, %v", p, err)
	}

	accounts, err := store.LoadAccounts(context.Background())
	if err != nil || accounts == nil || len(accounts) != 0 {
		t.Errorf("missing accounts should give an empty list, got %v, %v", accounts, err)
	}
}

func TestFileStore_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.json")
	writeFile(t, profilePath, `{"name": `)

	store := NewFileStore(profilePath, filepath.Join(dir, "track.json"))
	if _, err := store.LoadProfile(context.Background()); err == nil {
		t.Error("expected a parse error")
	}
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested")
			store := NewFileStore(filepath.Join(dir, "profile"+ext), filepath.Join(dir, "track"+ext))
			ctx := context.Background()

			p := profile.New("Acme", []string{"defi", "layer two"}, []string{"nft"}, []string{"Bridge: moves assets"})
			accounts := []profile.TrackedAccount{{Handle: "alice"}, {Handle: "bob", Description: "builder"}}

			if err := store.SaveProfile(ctx, p); err != nil {
				t.Fatalf("SaveProfile() error: %v", err)
			}
			if err := store.SaveAccounts(ctx, accounts); err != nil {
				t.Fatalf("SaveAccounts() error: %v", err)
			}

			loaded, err := store.LoadProfile(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(loaded, p) {
				t.Errorf("profile = %+v, want %+v", loaded, p)
			}

			loadedAccounts, err := store.LoadAccounts(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(loadedAccounts, accounts) {
				t.Errorf("accounts = %+v, want %+v", loadedAccounts, accounts)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 2 {
				t.Errorf("temporary files should be cleaned up, found %d entries", len(entries))
			}
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	store := NewFileStore("", "")
	if filepath.Base(store.profilePath) != "profile.json" || filepath.Base(store.trackPath) != "track_x.json" {
		t.Errorf("paths = %s, %s", store.profilePath, store.trackPath)
	}
	if filepath.Base(filepath.Dir(store.profilePath)) != "socialpulse" {
		t.Errorf("profile should live in the socialpulse config dir, got %s", store.profilePath)
	}
}
