package imageref

import (
	"path/filepath"
	"strings"
)

// IsRemote reports whether ref is fetched over HTTP rather than read from disk.
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Candidates lists the filesystem paths tried for a local reference, in order.
//
// An absolute path is tried as given; when it lies under the upload prefix it
// is also re-rooted under every base directory. A relative path is joined
// under every base directory.
func (c Config) Candidates(ref string) []string {
	if ref == "" {
		return nil
	}

	if !filepath.IsAbs(ref) {
		candidates := make([]string, 0, len(c.BaseDirs))
		for _, base := range c.BaseDirs {
			candidates = append(candidates, filepath.Join(base, ref))
		}
		return candidates
	}

	candidates := []string{ref}
	if c.underUploadPrefix(ref) {
		rel := strings.TrimLeft(ref, "/")
		for _, base := range c.BaseDirs {
			candidates = append(candidates, filepath.Join(base, rel))
		}
	}
	return candidates
}

func (c Config) underUploadPrefix(ref string) bool {
	prefix := strings.TrimRight(c.UploadPrefix, "/")
	if prefix == "" {
		return false
	}
	return ref == prefix || strings.HasPrefix(ref, prefix+"/")
}
