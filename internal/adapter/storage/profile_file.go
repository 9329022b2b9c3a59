// internal/adapter/storage/profile_file.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"socialpulse/internal/domain/profile"
)

const appDir = "socialpulse"

// DefaultProfilePath returns the profile document location under the XDG
// config directory
func DefaultProfilePath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "profile.json")
}

// DefaultTrackPath returns the tracked accounts document location under
// the XDG config directory
func DefaultTrackPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "track_x.json")
}

// trackDocument is the on-disk shape of the tracked accounts file
type trackDocument struct {
	Accounts []profile.TrackedAccount `json:"accounts" yaml:"accounts"`
}

// FileStore keeps the profile and tracked accounts in JSON or YAML
// documents, chosen by file extension
type FileStore struct {
	profilePath string
	trackPath   string
}

// NewFileStore creates a file store. Empty paths fall back to the defaults.
func NewFileStore(profilePath, trackPath string) *FileStore {
	if profilePath == "" {
		profilePath = DefaultProfilePath()
	}
	if trackPath == "" {
		trackPath = DefaultTrackPath()
	}
	return &FileStore{
		profilePath: profilePath,
		trackPath:   trackPath,
	}
}

// LoadProfile reads the profile document. A missing file yields a nil
// profile.
func (s *FileStore) LoadProfile(ctx context.Context) (*profile.Profile, error) {
	var p profile.Profile
	found, err := readDocument(s.profilePath, &p)
	if err != nil {
		return nil, fmt.Errorf("error loading profile from %s: %w", s.profilePath, err)
	}
	if !found {
		log.Printf("No profile found at %s", s.profilePath)
		return nil, nil
	}

	p.Normalize()
	return &p, nil
}

// LoadAccounts reads the tracked accounts document. A missing file
// yields no accounts.
func (s *FileStore) LoadAccounts(ctx context.Context) ([]profile.TrackedAccount, error) {
	var doc trackDocument
	found, err := readDocument(s.trackPath, &doc)
	if err != nil {
		return nil, fmt.Errorf("error loading tracked accounts from %s: %w", s.trackPath, err)
	}
	if !found {
		log.Printf("No tracked accounts found at %s", s.trackPath)
		return []profile.TrackedAccount{}, nil
	}

	return profile.NormalizeAccounts(doc.Accounts), nil
}

// SaveProfile writes the profile document
func (s *FileStore) SaveProfile(ctx context.Context, p *profile.Profile) error {
	if p == nil {
		p = &profile.Profile{}
	}
	return writeDocument(s.profilePath, p)
}

// SaveAccounts writes the tracked accounts document
func (s *FileStore) SaveAccounts(ctx context.Context, accounts []profile.TrackedAccount) error {
	if accounts == nil {
		accounts = []profile.TrackedAccount{}
	}
	return writeDocument(s.trackPath, trackDocument{Accounts: accounts})
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func readDocument(path string, out interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, out)
	} else {
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeDocument replaces path atomically
func writeDocument(path string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	return os.Rename(tmp.Name(), path)
}
