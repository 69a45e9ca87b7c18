package pdfprocessor

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"report_summarizer/logging"
	"report_summarizer/metrics"
)

// DefaultCacheTTL is how long an extraction result stays cached.
const DefaultCacheTTL = time.Hour

// CachedExtractor memoizes extraction results by document content and page
// cap, so extracting the same upload twice parses it once.
type CachedExtractor struct {
	extractor *Extractor
	cache     *cache.Cache
	recorder  metrics.Recorder
	logger    *logging.Logger
}

// NewCachedExtractor wraps extractor with a cache whose entries expire after
// ttl. A non-positive ttl uses DefaultCacheTTL.
func NewCachedExtractor(extractor *Extractor, ttl time.Duration, recorder metrics.Recorder, logger *logging.Logger) *CachedExtractor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedExtractor{
		extractor: extractor,
		cache:     cache.New(ttl, 2*ttl),
		recorder:  recorder,
		logger:    logger.Named("pdf"),
	}
}

// Extract returns the extraction result for data and whether it came from
// the cache. The returned result is a copy the caller may modify.
func (c *CachedExtractor) Extract(data []byte, maxPages int) (*ExtractionResult, bool) {
	if maxPages < 0 {
		maxPages = 0
	}
	key := cacheKey(data, maxPages)

	if cached, found := c.cache.Get(key); found {
		result := cached.(*ExtractionResult)
		c.observe(result, true)
		return cloneResult(result), true
	}

	result := c.extractor.ExtractBytes(data, maxPages)
	c.cache.SetDefault(key, result)
	c.observe(result, false)
	return cloneResult(result), false
}

// Len returns the number of cached results, including expired ones not yet
// evicted.
func (c *CachedExtractor) Len() int {
	return c.cache.ItemCount()
}

func (c *CachedExtractor) observe(result *ExtractionResult, cacheHit bool) {
	c.recorder.RecordExtraction(result.TotalPages, result.Failed(), cacheHit)
	if result.Failed() {
		c.logger.Warn("PDF extraction failed", zap.String("error", result.Error), zap.Bool("cache_hit", cacheHit))
		return
	}
	fields := logging.ExtractionFields(result.TotalPages, len(result.PageTexts), utf8.RuneCountInString(result.Text), cacheHit)
	if len(result.FailedPages) > 0 {
		fields = append(fields, zap.Ints("failed_pages", result.FailedPages))
	}
	c.logger.Info("PDF extracted", fields...)
}

func cacheKey(data []byte, maxPages int) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(maxPages)
}

func cloneResult(r *ExtractionResult) *ExtractionResult {
	out := *r
	out.PageTexts = slices.Clone(r.PageTexts)
	out.FailedPages = slices.Clone(r.FailedPages)
	return &out
}
