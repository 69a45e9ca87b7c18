package pdfprocessor

import (
	"testing"
	"time"
)

type extractionCall struct {
	pages            int
	failed, cacheHit bool
}

type recordingRecorder struct {
	calls []extractionCall
}

func (r *recordingRecorder) RecordSummary(int, int, time.Duration) {}
func (r *recordingRecorder) RecordGenerationError(string) {}
func (r *recordingRecorder) RecordQuestions(int, int) {}
func (r *recordingRecorder) RecordAction(string, string, time.Duration) {}
func (r *recordingRecorder) RecordExtraction(pages int, failed, cacheHit bool) {
	r.calls = append(r.calls, extractionCall{pages, failed, cacheHit})
}

func TestCachedExtractorParsesOnce(t *testing.T) {
	src := &fakeSource{pages: []string{"alpha", "beta"}}
	rec := &recordingRecorder{}
	c := NewCachedExtractor(fakeExtractor(src, nil), time.Minute, rec, nil)
	data := []byte("%PDF-same-upload")

	first, hit := c.Extract(data, 0)
	if hit {
		t.Error("first extraction should miss the cache")
	}
	second, hit := c.Extract(data, 0)
	if !hit {
		t.Error("second extraction should hit the cache")
	}
	if len(src.reads) != 2 {
		t.Errorf("expected the document to be parsed once (2 page reads), got %v", src.reads)
	}
	if first.Text != second.Text {
		t.Errorf("cached text differs: %q vs %q", first.Text, second.Text)
	}

	want := []extractionCall{{2, false, false}, {2, false, true}}
	if len(rec.calls) != len(want) {
		t.Fatalf("recorded %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, rec.calls[i], want[i])
		}
	}
}

func TestCachedExtractorKeyIncludesPageCap(t *testing.T) {
	src := &fakeSource{pages: []string{"alpha", "beta", "gamma"}}
	c := NewCachedExtractor(fakeExtractor(src, nil), time.Minute, nil, nil)
	data := []byte("%PDF")

	all, _ := c.Extract(data, 0)
	capped, hit := c.Extract(data, 1)
	if hit {
		t.Error("a different page cap must not reuse the cached result")
	}
	if len(all.PageTexts) != 3 || len(capped.PageTexts) != 1 {
		t.Errorf("got %d and %d pages", len(all.PageTexts), len(capped.PageTexts))
	}

	if _, hit := c.Extract(data, -3); !hit {
		t.Error("negative cap should share the entry of cap 0")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCachedExtractorReturnsCopies(t *testing.T) {
	src := &fakeSource{pages: []string{"alpha"}}
	c := NewCachedExtractor(fakeExtractor(src, nil), time.Minute, nil, nil)
	data := []byte("%PDF")

	first, _ := c.Extract(data, 0)
	first.PageTexts[0] = "mutated"
	first.Text = "mutated"

	second, _ := c.Extract(data, 0)
	if second.PageTexts[0] != "alpha" || second.Text != "alpha" {
		t.Errorf("cache entry was modified through a returned result: %+v", second)
	}
}

func TestCachedExtractorRecordsFailures(t *testing.T) {
	rec := &recordingRecorder{}
	c := NewCachedExtractor(NewExtractor(), 0, rec, nil)

	result, _ := c.Extract([]byte("not a pdf"), 0)
	if !result.Failed() {
		t.Fatal("expected failure")
	}
	if len(rec.calls) != 1 || !rec.calls[0].failed {
		t.Errorf("expected one failed extraction recorded, got %v", rec.calls)
	}
}
