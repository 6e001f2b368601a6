// Package imagecache downloads remote input images and caches them on disk, so
// repeated commands on the same URL fetch it once.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/vecprep/internal/compression"
	"github.com/jmylchreest/vecprep/internal/image"
	httputil "github.com/jmylchreest/vecprep/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to the user cache directory under vecprep/images.
	CacheDir string

	// AllowOverwrite re-downloads images that are already cached.
	AllowOverwrite bool

	// Fetch overrides the download options.
	Fetch httputil.FetchOptions
}

// IsRemote reports whether path is an http or https URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "vecprep", "images"), nil
	}
	return filepath.Join(cacheDir, "vecprep", "images"), nil
}

// urlExtension returns the image extension named by a URL path, including a
// compression suffix, or "" when the URL does not name a supported image.
func urlExtension(url string) string {
	if i := strings.IndexAny(url, "?#"); i != -1 {
		url = url[:i]
	}
	inner := compression.InnerName(url)
	ext := strings.ToLower(filepath.Ext(inner))
	if !slices.Contains(image.SupportedImageExtensions(), ext) {
		return ""
	}
	return ext + strings.ToLower(url[len(inner):])
}

// sniffExtension guesses an image extension from content.
func sniffExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	return ""
}

// cacheKey is the first 16 bytes of the URL's SHA-256 as hex.
func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", hash[:16])
}

// DownloadAndCache downloads a remote image into the cache directory and returns
// the local path. An existing cached copy is reused unless AllowOverwrite is set.
func DownloadAndCache(ctx context.Context, url string, opts CacheOptions) (string, error) {
	if !IsRemote(url) {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", err
		}
		cacheDir = defaultDir
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	key := cacheKey(url)
	ext := urlExtension(url)
	if ext != "" && !opts.AllowOverwrite {
		cached := filepath.Join(cacheDir, key+ext)
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if ext == "" {
		if ext = sniffExtension(data); ext == "" {
			return "", fmt.Errorf("%s is not a supported image", url)
		}
	}

	cachedPath := filepath.Join(cacheDir, key+ext)
	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}

	return cachedPath, nil
}
