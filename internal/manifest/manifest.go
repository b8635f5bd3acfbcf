package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileName is the manifest file written into a site's output directory.
const FileName = "manifest.json"

// BuildManifest represents a complete record of a generation run's inputs and outputs.
type BuildManifest struct {
	ID         string    `json:"id"`
	Site       string    `json:"site"`
	Generator  string    `json:"generator"`
	Timestamp  time.Time `json:"timestamp"`
	ConfigHash string    `json:"config_hash,omitempty"`
	Pages      []Page    `json:"pages"`
	Outputs    Outputs   `json:"outputs"`
	Status     string    `json:"status"`
	Duration   int64     `json:"duration_ms"`
	LoadErrors int       `json:"load_errors,omitempty"`
}

// Page records one rendered page.
type Page struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Fingerprint string   `json:"fingerprint"`
	Related     []string `json:"related"`
}

// Outputs holds content hashes of written artifacts keyed by output-relative path.
type Outputs struct {
	ArtifactHashes map[string]string `json:"artifact_hashes,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's config and page set.
// Two runs over identical content produce the same hash regardless of build time.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		Site       string `json:"site"`
		ConfigHash string `json:"config_hash"`
		Pages      []Page `json:"pages"`
	}{
		Site:       m.Site,
		ConfigHash: m.ConfigHash,
		Pages:      m.Pages,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal hash input: %w", err)
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// HashArtifacts fills Outputs.ArtifactHashes with sha256 sums of files under root.
func (m *BuildManifest) HashArtifacts(root string, files []string) error {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		sum, err := hashFile(f)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = f
		}
		hashes[filepath.ToSlash(rel)] = sum
	}
	m.Outputs.ArtifactHashes = hashes
	return nil
}

// Slugs returns the page slugs in manifest order.
func (m *BuildManifest) Slugs() []string {
	out := make([]string, len(m.Pages))
	for i, p := range m.Pages {
		out[i] = p.Slug
	}
	return out
}

// Changed lists slugs whose fingerprint differs from prev, plus slugs new in m.
func (m *BuildManifest) Changed(prev *BuildManifest) []string {
	old := map[string]string{}
	if prev != nil {
		for _, p := range prev.Pages {
			old[p.Slug] = p.Fingerprint
		}
	}
	var changed []string
	for _, p := range m.Pages {
		if fp, ok := old[p.Slug]; !ok || fp != p.Fingerprint {
			changed = append(changed, p.Slug)
		}
	}
	sort.Strings(changed)
	return changed
}

// Write stores the manifest as dir/manifest.json.
func Write(dir string, m *BuildManifest) (string, error) {
	data, err := m.ToJSON()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// Read loads dir/manifest.json. A missing manifest returns (nil, nil).
func Read(dir string) (*BuildManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
