package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	// sha256("") is a well-known constant.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(""); got != empty {
		t.Errorf("Sum(\"\") = %q", got)
	}
	if Sum("a") == Sum("b") {
		t.Error("different inputs produced the same digest")
	}
}

func TestETag_Quoted(t *testing.T) {
	if got := ETag("abc"); got != `"abc"` {
		t.Errorf("ETag = %q", got)
	}
}
