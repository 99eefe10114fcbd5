// Package cache keeps decoded snapshot declarations on disk so unchanged
// API files are not parsed again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vijaygarry/doclava/internal/symsrc"
)

// Bump when Payload or any declaration type changes shape.
const schemaVersion uint16 = 1

// Digest is a SHA-256 of an input file's bytes.
type Digest [32]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest { return sha256.Sum256(data) }

// String returns the hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports the zero digest.
func (d Digest) IsZero() bool { return d == Digest{} }

// DiskCache stores payloads by digest. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the cached form of one parsed input.
type Payload struct {
	Schema   uint16
	Name     string
	Source   string
	Packages []symsrc.PackageDecl
	Classes  []symsrc.ClassDecl
}

// Open returns a cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it if needed.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "snapshots", key.String()+".mp")
}

// Put serializes payload under key. The file is replaced atomically.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = schemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the payload stored under key. A missing entry, or one written
// by another schema version, is a miss.
func (c *DiskCache) Get(key Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if out.Schema != schemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// FromSet captures set for storage.
func FromSet(set *symsrc.Set, source string) *Payload {
	p := &Payload{Name: set.Name, Source: source}
	for _, pkg := range set.Packages() {
		p.Packages = append(p.Packages, *pkg)
	}
	for _, c := range set.Classes() {
		p.Classes = append(p.Classes, *c)
	}
	return p
}

// Set rebuilds the declaration set.
func (p *Payload) Set() (*symsrc.Set, error) {
	set := symsrc.NewSet(p.Name)
	for i := range p.Packages {
		set.AddPackage(&p.Packages[i])
	}
	for i := range p.Classes {
		if err := set.Add(&p.Classes[i]); err != nil {
			return nil, fmt.Errorf("cached %s: %w", p.Source, err)
		}
	}
	return set, nil
}
