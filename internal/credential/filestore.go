package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/openinv/invctl/internal/serviceerr"
)

// FileStore persists the credential as a JSON file, mode 0600, keyed by the
// backend base URL so credentials for different deployments do not clobber
// each other.
type FileStore struct {
	path    string
	baseURL string
}

func NewFileStore(path, baseURL string) *FileStore {
	return &FileStore{path: path, baseURL: baseURL}
}

type credentialFile struct {
	Credentials map[string]Credential `json:"credentials"`
}

func (s *FileStore) Load(_ context.Context) (Credential, error) {
	file, err := s.read()
	if err != nil {
		return Credential{}, err
	}

	cred, ok := file.Credentials[s.baseURL]
	if !ok || cred.IsZero() {
		return Credential{}, serviceerr.ErrNoCredential
	}
	return cred, nil
}

func (s *FileStore) Save(_ context.Context, cred Credential) error {
	file, err := s.read()
	if err != nil {
		return err
	}
	file.Credentials[s.baseURL] = cred
	return s.write(file)
}

func (s *FileStore) Clear(_ context.Context) error {
	file, err := s.read()
	if err != nil {
		return err
	}
	delete(file.Credentials, s.baseURL)
	return s.write(file)
}

func (s *FileStore) read() (credentialFile, error) {
	file := credentialFile{Credentials: map[string]Credential{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("reading credential file: %w", err)
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parsing credential file: %w", err)
	}
	if file.Credentials == nil {
		file.Credentials = map[string]Credential{}
	}
	return file, nil
}

// write replaces the file atomically via a rename so a crash mid-write
// never leaves a truncated credential file behind.
func (s *FileStore) write(file credentialFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing credential file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
