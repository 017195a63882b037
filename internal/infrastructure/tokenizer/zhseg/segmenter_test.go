package zhseg

import "testing"

func TestCutIsDeterministic(t *testing.T) {
	seg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text := "人工智能正在改变世界，机器学习是其中的核心技术。"
	first := seg.Cut(text)
	if len(first) == 0 {
		t.Fatalf("expected tokens for non-empty text")
	}
	second := seg.Cut(text)
	if len(first) != len(second) {
		t.Fatalf("token count changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("token %d changed between calls: %q vs %q", i, first[i], second[i])
		}
	}
}
