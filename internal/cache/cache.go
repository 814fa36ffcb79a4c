// Package cache provides the two bucketed, etag-checked string caches the
// rest of the module layers on: a no-op NullCache and a one-file-per-key
// FileCache with atomic, fsynced writes.
package cache

// Cache is the common interface shared by the site-structure cache, the
// page cache, and the diagram cache. The etag is the source mtime for the
// first two and always empty for diagrams (their key is itself a content
// hash). A mismatched etag must return ("", false), never stale content.
type Cache interface {
	GetString(key, etag string) (value string, ok bool)
	SetString(key, etag, value string) error
}

// NullCache never stores anything; every Get misses.
type NullCache struct{}

func (NullCache) GetString(key, etag string) (string, bool) { return "", false }
func (NullCache) SetString(key, etag, value string) error   { return nil }
