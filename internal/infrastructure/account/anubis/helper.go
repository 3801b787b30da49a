package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// cacheKey hashes the token so raw credentials never sit in the cache map.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "anubis:token:" + hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
