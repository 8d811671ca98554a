// Package filemark encodes file identity into plain-text message content
// and recovers it later. The marker forms are a fixed convention: the
// full path rides in a <!PATH:...!> marker and the display name in a
// "--- 文件: name ---" header. Cache keys are recovered from the path
// marker, so the byte form must not change.
package filemark

import "strings"

const (
	pathMarkerPrefix = "<!PATH:"
	pathMarkerSuffix = "!>"

	headerPrefix = "--- 文件: "
	headerSuffix = " ---"
	footer       = "--- 文件结束 ---"

	// MergeSeparator joins multiple files into a single message body.
	MergeSeparator = "\n\n---\n\n"
)

// Info is the identity recovered from a marked-up file body.
type Info struct {
	Name string
	Path string
}

// Encode wraps a file body with the path marker and header/footer.
func Encode(name, path, body string) string {
	var b strings.Builder
	if path != "" {
		b.WriteString(pathMarkerPrefix)
		b.WriteString(path)
		b.WriteString(pathMarkerSuffix)
		b.WriteString("\n")
	}
	b.WriteString(headerPrefix)
	b.WriteString(name)
	b.WriteString(headerSuffix)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

// Rewrap wraps a body (original content or a digest) with the clean
// header/footer, without the path marker.
func Rewrap(name, body string) string {
	return headerPrefix + name + headerSuffix + "\n" + body + "\n" + footer
}

// MultiFile reports whether the content carries more than one path
// marker, i.e. several files merged into one message. Extract recovers
// only the first identity, so a merged body has no single cache key.
func MultiFile(content string) bool {
	return strings.Count(content, pathMarkerPrefix) > 1
}

// Extract recovers the file identity from marked-up content and returns
// the body with all markers stripped. Missing markers are tolerated: an
// unmarked content comes back unchanged with an empty Info.
func Extract(content string) (Info, string) {
	var info Info
	rest := content

	if start := strings.Index(rest, pathMarkerPrefix); start >= 0 {
		if end := strings.Index(rest[start:], pathMarkerSuffix); end >= 0 {
			info.Path = rest[start+len(pathMarkerPrefix) : start+end]
			rest = rest[:start] + rest[start+end+len(pathMarkerSuffix):]
		}
	}

	if start := strings.Index(rest, headerPrefix); start >= 0 {
		if end := strings.Index(rest[start:], headerSuffix); end >= 0 {
			info.Name = rest[start+len(headerPrefix) : start+end]
			rest = rest[:start] + rest[start+end+len(headerSuffix):]
		}
	}

	if idx := strings.LastIndex(rest, footer); idx >= 0 {
		rest = rest[:idx] + rest[idx+len(footer):]
	}

	return info, strings.TrimSpace(rest)
}
