package normalization

import "testing"

func TestSimilarityRatio_Identical(t *testing.T) {
	if r := SimilarityRatio("python", "python"); r != 1.0 {
		t.Fatalf("expected 1.0 got %v", r)
	}
}

func TestSimilarityRatio_Empty(t *testing.T) {
	if r := SimilarityRatio("", ""); r != 1.0 {
		t.Fatalf("expected 1.0 for both empty, got %v", r)
	}
	if r := SimilarityRatio("go", ""); r != 0.0 {
		t.Fatalf("expected 0.0 got %v", r)
	}
}

func TestSimilarityRatio_CloseTypo(t *testing.T) {
	r := SimilarityRatio("phyton", "python")
	if r < 0.6 {
		t.Fatalf("expected typo to score above the match threshold, got %v", r)
	}
}

func TestSimilarityRatio_Unrelated(t *testing.T) {
	r := SimilarityRatio("qqqq", "zzzz")
	if r != 0.0 {
		t.Fatalf("expected 0.0 got %v", r)
	}
}

func TestSimilarityRatio_Symmetric(t *testing.T) {
	a := SimilarityRatio("machine learning", "deep learning")
	b := SimilarityRatio("deep learning", "machine learning")
	if a != b {
		t.Fatalf("ratio should be symmetric for these inputs: %v vs %v", a, b)
	}
}

func TestStripPunctuation(t *testing.T) {
	if got := StripPunctuation("c++!?  programming"); got != "c programming" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("machine learning"); got != "Machine Learning" {
		t.Fatalf("unexpected: %q", got)
	}
}
