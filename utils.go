package minihttp

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// CleanRelPath turns a request path such as "/a//b/../c/" into a slash
// separated path relative to the served root ("a/c"). The root itself is
// returned as ".", which is what io/fs and os.Root expect.
//
// It reports false for paths that cannot name a file: invalid UTF-8, NUL
// bytes or backslashes.
func CleanRelPath(p string) (string, bool) {
	if !utf8.ValidString(p) || strings.ContainsAny(p, "\x00\\") {
		return "", false
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return ".", true
	}
	return cleaned, true
}

// CanonicalPath returns the cleaned form of an absolute request path: no
// empty, "." or ".." segments, with a trailing slash kept when p has one.
// It reports false for paths that cannot name a file, like CleanRelPath.
func CanonicalPath(p string) (string, bool) {
	if !utf8.ValidString(p) || strings.ContainsAny(p, "\x00\\") {
		return "", false
	}

	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned, true
}

// HasHiddenSegment reports whether any segment of a relative path starts
// with a dot.
func HasHiddenSegment(rel string) bool {
	if rel == "." {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// EscapePath percent-encodes each segment of a slash separated path, keeping
// the slashes and a leading/trailing slash if present.
func EscapePath(p string) string {
	if p == "" {
		return "/"
	}
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func splitSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
