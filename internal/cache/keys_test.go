package cache

import "testing"

func TestGenerateCacheKeyDeterministic(t *testing.T) {
	a := GenerateCacheKey("what is this about?", []string{"doc-1", "doc-2"}, 5)
	b := GenerateCacheKey("what is this about?", []string{"doc-2", "doc-1"}, 5)

	if a != b {
		t.Errorf("expected identical keys regardless of doc order: %s != %s", a, b)
	}
}

func TestGenerateCacheKeyNormalizesQuestion(t *testing.T) {
	a := GenerateCacheKey("  What Is This?  ", nil, 5)
	b := GenerateCacheKey("what is this?", nil, 5)

	if a != b {
		t.Errorf("expected case/space-insensitive keys: %s != %s", a, b)
	}
}

func TestGenerateCacheKeyDistinguishesParams(t *testing.T) {
	base := GenerateCacheKey("question", []string{"doc-1"}, 5)

	if GenerateCacheKey("other question", []string{"doc-1"}, 5) == base {
		t.Error("different questions should produce different keys")
	}
	if GenerateCacheKey("question", []string{"doc-2"}, 5) == base {
		t.Error("different documents should produce different keys")
	}
	if GenerateCacheKey("question", []string{"doc-1"}, 10) == base {
		t.Error("different topK should produce different keys")
	}
}
