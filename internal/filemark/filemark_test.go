package filemark

import (
	"strings"
	"testing"
)

func TestEncodeExtract_RoundTrip(t *testing.T) {
	content := Encode("notes.md", "/home/u/docs/notes.md", "line one\nline two")

	info, body := Extract(content)
	if info.Path != "/home/u/docs/notes.md" {
		t.Errorf("expected path recovered, got %q", info.Path)
	}
	if info.Name != "notes.md" {
		t.Errorf("expected name recovered, got %q", info.Name)
	}
	if body != "line one\nline two" {
		t.Errorf("expected clean body, got %q", body)
	}
}

func TestEncode_ExactMarkerBytes(t *testing.T) {
	content := Encode("a.txt", "/tmp/a.txt", "hi")

	// Cache-key recovery depends on these exact byte sequences.
	for _, want := range []string{
		"<!PATH:/tmp/a.txt!>",
		"--- 文件: a.txt ---",
		"--- 文件结束 ---",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("encoded content missing %q:\n%s", want, content)
		}
	}
}

func TestEncode_NoPath(t *testing.T) {
	content := Encode("pasted.txt", "", "body")
	if strings.Contains(content, "<!PATH:") {
		t.Error("path marker must be omitted when no path is known")
	}
	info, body := Extract(content)
	if info.Path != "" {
		t.Errorf("expected empty path, got %q", info.Path)
	}
	if info.Name != "pasted.txt" || body != "body" {
		t.Errorf("round trip failed: %+v %q", info, body)
	}
}

func TestExtract_Unmarked(t *testing.T) {
	info, body := Extract("just plain text")
	if info.Name != "" || info.Path != "" {
		t.Errorf("expected empty info, got %+v", info)
	}
	if body != "just plain text" {
		t.Errorf("expected content unchanged, got %q", body)
	}
}

func TestMultiFile(t *testing.T) {
	single := Encode("a.txt", "/tmp/a.txt", "aaa")
	merged := single + MergeSeparator + Encode("b.txt", "/tmp/b.txt", "bbb")

	if MultiFile(single) {
		t.Error("single marked file is not multi")
	}
	if !MultiFile(merged) {
		t.Error("two path markers must report multi")
	}
	if MultiFile(Encode("pasted.txt", "", "body")) {
		t.Error("pathless content is not multi")
	}
}

func TestRewrap(t *testing.T) {
	out := Rewrap("r.md", "digest text")
	if strings.Contains(out, "<!PATH:") {
		t.Error("rewrap must not reintroduce the path marker")
	}
	info, body := Extract(out)
	if info.Name != "r.md" || body != "digest text" {
		t.Errorf("rewrap round trip failed: %+v %q", info, body)
	}
}
