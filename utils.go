package attachly

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// IsValidKey validates that an object key is safe to place in a request path.
// It checks that the key:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments (/./ or ending with /.)
//   - does not contain control characters, DEL, or whitespace
func IsValidKey(k string) bool {
	if k == "" || k == "/" || k == "." {
		return false
	}

	if k[0] == '/' || strings.HasSuffix(k, "/") {
		return false
	}

	if strings.Contains(k, "..") || strings.Contains(k, "//") {
		return false
	}

	if strings.ContainsAny(k, `\?#~`) {
		return false
	}

	if !utf8.ValidString(k) {
		return false
	}

	if strings.Contains(k, "/./") || strings.HasSuffix(k, "/.") {
		return false
	}

	for _, r := range k {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// BuildObjectKey returns notes/{userID}/{noteID}/{unixMillis}{.ext}.
// The extension is taken from filename, lower-cased and reduced to
// alphanumerics; it is omitted when nothing remains.
func BuildObjectKey(userID, noteID, filename string, now time.Time) string {
	var b strings.Builder
	b.WriteString("notes/")
	b.WriteString(userID)
	b.WriteByte('/')
	b.WriteString(noteID)
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	if ext := fileExtension(filename); ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

func fileExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
}

// NormalizeEndpoint trims surrounding whitespace and trailing slashes, and
// prepends https:// when endpoint has no http(s) scheme.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}
	if !schemePrefixRegex.MatchString(endpoint) {
		endpoint = "https://" + endpoint
	}
	return endpoint
}
