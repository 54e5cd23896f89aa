package client_identity

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Identity is self-asserted: whoever presents a cached id "is" that
// participant. Ids derive deterministically from the normalized display name,
// so the same name on the same machine recovers the same participant across
// restarts. The cache file is a plain name->id JSON map, never synchronized
// across devices.

const idLength = 12

var idNamespace = uuid.MustParse("7b0dcb9a-5f1d-4f8e-9a14-2f3a6f0f34c7")

type Cache struct {
	mu   sync.Mutex
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// DefaultCachePath places the id map under the user config dir.
func DefaultCachePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sprint-poker", "identities.json"), nil
}

// Resolve returns the stable id for a display name, minting and persisting it
// on first use.
func (c *Cache) Resolve(name string) (string, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return "", errors.New("empty name")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.read()
	if err != nil {
		return "", err
	}

	if id, ok := ids[normalized]; ok {
		return id, nil
	}

	id := DeriveID(normalized)
	ids[normalized] = id
	if err := c.write(ids); err != nil {
		return "", err
	}
	return id, nil
}

// DeriveID maps a normalized name to a fixed-length uppercase id.
func DeriveID(normalized string) string {
	raw := uuid.NewSHA1(idNamespace, []byte(normalized)).String()
	raw = strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	return raw[:idLength]
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Cache) read() (map[string]string, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	ids := map[string]string{}
	if err := json.Unmarshal(raw, &ids); err != nil {
		// A corrupt cache only costs cached identities, start over.
		return map[string]string{}, nil
	}
	return ids, nil
}

func (c *Cache) write(ids map[string]string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o600)
}
