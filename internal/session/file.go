package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// credentialFile is the on-disk shape: exactly two string entries, the
// same key-value pairs the mobile app keeps in its async storage.
type credentialFile struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// FileStorage keeps the credential in a small JSON key-value file. Both
// entries live in one file so they appear and disappear together.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage writing to path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the stored credential. A missing file means no credential
// and is not an error.
func (f *FileStorage) Load() (Credential, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, err
	}

	var kv credentialFile
	if err := json.Unmarshal(data, &kv); err != nil {
		return Credential{}, false, fmt.Errorf("decoding credential file: %w", err)
	}
	if kv.Token == "" || kv.UserID == "" {
		return Credential{}, false, nil
	}
	id, err := strconv.ParseInt(kv.UserID, 10, 64)
	if err != nil {
		return Credential{}, false, fmt.Errorf("decoding stored user id: %w", err)
	}
	return Credential{Token: kv.Token, UserID: id}, true, nil
}

// Save writes the credential to a temporary file and renames it into
// place, so readers never observe one entry without the other.
func (f *FileStorage) Save(cred Credential) error {
	data, err := json.Marshal(credentialFile{
		Token:  cred.Token,
		UserID: strconv.FormatInt(cred.UserID, 10),
	})
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear removes the credential file. Clearing an absent file succeeds.
func (f *FileStorage) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
