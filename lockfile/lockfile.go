// Package lockfile implements tmxkit.lock — a lock file that records
// an MD5 fingerprint of the staged inputs per corpus base name. This
// enables incremental builds: when the TMX document, the language
// pair, and the tokenization policy are all unchanged since the last
// run, the staging step is skipped and the existing triple is reused.
//
// The lock file is stored alongside tmxkit.yaml as tmxkit.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "tmxkit.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the tmxkit.lock file structure.
type LockFile struct {
	Version int `yaml:"version"`
	// Staged maps corpus base name to the fingerprint of the inputs
	// its staging triple was produced from.
	Staged map[string]string `yaml:"staged"`

	path string `yaml:"-"`
}

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version: Version,
		Staged:  make(map[string]string),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path
	if lf.Staged == nil {
		lf.Staged = make(map[string]string)
	}
	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Fingerprint digests the staged inputs: the TMX document content plus
// every parameter that affects the staging triple.
func Fingerprint(tmxPath string, params ...string) (string, error) {
	h := md5.New()
	f, err := os.Open(tmxPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	io.WriteString(h, "\x00"+strings.Join(params, "\x00"))
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// IsCurrent reports whether the recorded fingerprint for a base name
// matches the given one.
func (lf *LockFile) IsCurrent(base, fingerprint string) bool {
	got, ok := lf.Staged[base]
	return ok && got == fingerprint
}

// Update records the fingerprint for a base name after a successful
// staging run.
func (lf *LockFile) Update(base, fingerprint string) {
	lf.Staged[base] = fingerprint
}
