package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/crawl"
	"github.com/fwojciec/corpus/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// page is one document served by the fake web.
type page struct {
	body         string
	etag         string
	lastModified string
}

// web is an in-memory origin that counts requests.
type web struct {
	mu    sync.Mutex
	pages map[string]*page
	gets  map[string]int
	heads map[string]int
}

func newWeb() *web {
	return &web{
		pages: make(map[string]*page),
		gets:  make(map[string]int),
		heads: make(map[string]int),
	}
}

func (w *web) set(url string, p *page) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pages[url] = p
}

func (w *web) totalGets() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.gets {
		n += c
	}
	return n
}

func (w *web) fetcher() *mock.Fetcher {
	serve := func(url string, counter map[string]int, withBody bool) (*corpus.FetchResult, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		counter[url]++
		p, ok := w.pages[url]
		if !ok {
			return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: status 404", url)
		}
		res := &corpus.FetchResult{URL: url, StatusCode: 200, ETag: p.etag, LastModified: p.lastModified}
		if withBody {
			res.Body = p.body
		}
		return res, nil
	}
	return &mock.Fetcher{
		GetFn: func(_ context.Context, url string) (*corpus.FetchResult, error) {
			return serve(url, w.gets, true)
		},
		HeadFn: func(_ context.Context, url string) (*corpus.FetchResult, error) {
			return serve(url, w.heads, false)
		},
	}
}

// store is an in-memory document store that counts writes.
type store struct {
	mu      sync.Mutex
	docs    map[string]*corpus.Document
	inserts int
	updates int
}

func newStore() *store {
	return &store{docs: make(map[string]*corpus.Document)}
}

func (s *store) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts + s.updates
}

func (s *store) get(url string) *corpus.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[url]
}

func (s *store) service() *mock.DocumentService {
	return &mock.DocumentService{
		DocumentExistsFn: func(_ context.Context, url string) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			_, ok := s.docs[url]
			return ok, nil
		},
		FindMetadataFn: func(_ context.Context, url string) (*corpus.Metadata, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			d, ok := s.docs[url]
			if !ok {
				return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
			}
			return d.Metadata(), nil
		},
		InsertDocumentFn: func(_ context.Context, doc *corpus.Document) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.inserts++
			cp := *doc
			s.docs[doc.URL] = &cp
			return nil
		},
		UpdateDocumentFn: func(_ context.Context, url string, doc *corpus.Document) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.docs[url]; !ok {
				return corpus.Errorf(corpus.ENOTFOUND, "document not found")
			}
			s.updates++
			cp := *doc
			s.docs[url] = &cp
			return nil
		},
	}
}

// ledger is an in-memory progress ledger that records every save.
type ledger struct {
	mu    sync.Mutex
	cur   corpus.Progress
	saves []corpus.Progress
}

func (l *ledger) progress() corpus.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cur
}

func (l *ledger) service() *mock.ProgressLedger {
	return &mock.ProgressLedger{
		LoadProgressFn: func(context.Context) (*corpus.Progress, error) {
			l.mu.Lock()
			defer l.mu.Unlock()
			p := l.cur
			return &p, nil
		},
		SaveProgressFn: func(_ context.Context, p *corpus.Progress) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.cur = *p
			l.saves = append(l.saves, *p)
			return nil
		},
	}
}

// words returns n distinct-enough words joined by spaces.
func words(n int, seed string) string {
	w := make([]string, n)
	for i := range w {
		w[i] = seed
	}
	return strings.Join(w, " ")
}

// passthrough treats the raw body as already-extracted text.
func passthrough() *mock.TextExtractor {
	return &mock.TextExtractor{
		ExtractTextFn: func(raw string) (string, error) { return corpus.NormalizeText(raw), nil },
	}
}

func newRegistry(t *testing.T) *corpus.Registry {
	t.Helper()
	r := corpus.NewRegistry()
	require.NoError(t, r.Register(&corpus.Source{
		Kind:             "wikipedia",
		URLTemplate:      "https://en.wikipedia.org/wiki/{title}",
		SpaceReplacement: "_",
		Extractor:        passthrough(),
	}))
	require.NoError(t, r.Register(&corpus.Source{
		Kind:        "autoru",
		URLTemplate: "https://auto.ru/articles/{title}/",
		Extractor:   passthrough(),
	}))
	return r
}

type harness struct {
	web     *web
	store   *store
	ledger  *ledger
	pauses  int
	crawler *crawl.Crawler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{web: newWeb(), store: newStore(), ledger: &ledger{}}
	reg := newRegistry(t)
	h.crawler = &crawl.Crawler{
		Resolver:  reg,
		Extractor: reg,
		Fetcher:   h.web.fetcher(),
		Documents: h.store.service(),
		Ledger:    h.ledger.service(),
		MinWords:  corpus.DefaultMinWords,
		Delay:     1500 * time.Millisecond,
		Policy:    corpus.ChangePolicyHeaders,
		Pause: func(ctx context.Context, d time.Duration) error {
			h.pauses++
			return ctx.Err()
		},
		Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	return h
}

const (
	mustangID  = "wikipedia::Ford Mustang"
	mustangURL = "https://en.wikipedia.org/wiki/Ford_Mustang"
	articleID  = "autoru::some-article"
	articleURL = "https://auto.ru/articles/some-article/"
)

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("inserts new documents", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(mustangURL, &page{body: words(150, "mustang"), lastModified: "Mon, 01 Jan 2024 00:00:00 GMT"})

		res, err := h.crawler.Run(context.Background(), []string{mustangID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, 1, res.Accepted)
		assert.Equal(t, 0, h.web.heads[mustangURL])
		assert.Equal(t, 1, h.web.gets[mustangURL])

		doc := h.store.get(mustangURL)
		require.NotNil(t, doc)
		assert.Equal(t, "wikipedia", doc.Source)
		assert.Equal(t, "Ford Mustang", doc.Title)
		assert.Equal(t, crawl.Fingerprint(words(150, "mustang")), doc.ContentHash)
		assert.Equal(t, "Mon, 01 Jan 2024 00:00:00 GMT", doc.LastModified)
		assert.Empty(t, doc.RawHTML)

		p := h.ledger.progress()
		assert.Equal(t, mustangID, p.LastProcessed)
		assert.Equal(t, 1, p.TotalDownloaded)
	})

	t.Run("matching validator skips download and write", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(mustangURL, &page{body: words(150, "mustang"), lastModified: "Mon, 01 Jan 2024 00:00:00 GMT"})
		_, err := h.crawler.Run(context.Background(), []string{mustangID}, nil)
		require.NoError(t, err)

		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), []string{mustangID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Unchanged)
		assert.Equal(t, 1, h.web.gets[mustangURL])
		assert.Equal(t, 1, h.web.heads[mustangURL])
		assert.Equal(t, 1, h.store.writes())
		assert.Equal(t, 2, h.ledger.progress().TotalDownloaded)
	})

	t.Run("changed content updates in place", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(articleURL, &page{body: words(120, "old"), etag: `"abc"`})
		_, err := h.crawler.Run(context.Background(), []string{articleID}, nil)
		require.NoError(t, err)

		h.web.set(articleURL, &page{body: words(130, "new"), etag: `"def"`})
		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 1, h.store.inserts)
		assert.Equal(t, 1, h.store.updates)

		doc := h.store.get(articleURL)
		require.NotNil(t, doc)
		assert.Equal(t, `"def"`, doc.ETag)
		assert.Equal(t, crawl.Fingerprint(words(130, "new")), doc.ContentHash)
	})

	t.Run("same content with new validators is refreshed under headers policy", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(articleURL, &page{body: words(120, "same"), etag: `"abc"`})
		_, err := h.crawler.Run(context.Background(), []string{articleID}, nil)
		require.NoError(t, err)

		h.web.set(articleURL, &page{body: words(120, "same"), etag: `"xyz"`})
		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, `"xyz"`, h.store.get(articleURL).ETag)
	})

	t.Run("same content is left alone under content policy", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.crawler.Policy = corpus.ChangePolicyContent
		h.web.set(articleURL, &page{body: words(120, "same"), etag: `"abc"`})
		_, err := h.crawler.Run(context.Background(), []string{articleID}, nil)
		require.NoError(t, err)

		h.web.set(articleURL, &page{body: words(120, "same"), etag: `"xyz"`})
		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Identical)
		assert.Equal(t, 1, h.store.writes())
		assert.Equal(t, `"abc"`, h.store.get(articleURL).ETag)
	})

	t.Run("second run over unchanged origin writes nothing", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		ids := []string{mustangID, articleID}
		h.web.set(mustangURL, &page{body: words(150, "mustang"), lastModified: "Mon, 01 Jan 2024 00:00:00 GMT"})
		h.web.set(articleURL, &page{body: words(120, "article"), etag: `"abc"`})

		_, err := h.crawler.Run(context.Background(), ids, nil)
		require.NoError(t, err)
		require.Equal(t, 2, h.store.writes())

		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), ids, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, res.Unchanged)
		assert.Equal(t, 2, h.store.writes())
		assert.Equal(t, 2, h.web.totalGets())
	})

	t.Run("short text is rejected at the boundary", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		shortURL := "https://auto.ru/articles/short/"
		okURL := "https://auto.ru/articles/ok/"
		h.web.set(shortURL, &page{body: words(99, "w")})
		h.web.set(okURL, &page{body: words(100, "w")})

		var outcomes []crawl.Outcome
		res, err := h.crawler.Run(context.Background(), []string{"autoru::short", "autoru::ok"}, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressItem {
				outcomes = append(outcomes, *e.Outcome)
			}
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.Equal(t, crawl.StatusRejected, outcomes[0].Status)
		assert.Equal(t, 99, outcomes[0].Words)
		assert.Equal(t, crawl.StatusInserted, outcomes[1].Status)
		assert.Equal(t, 1, res.Rejected)
		assert.Nil(t, h.store.get(shortURL))
		assert.NotNil(t, h.store.get(okURL))

		p := h.ledger.progress()
		assert.Equal(t, "autoru::ok", p.LastProcessed)
		assert.Equal(t, 1, p.TotalDownloaded)
		assert.Equal(t, 1, h.pauses)
	})

	t.Run("malformed line is skipped without requests", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(mustangURL, &page{body: words(150, "mustang")})

		var outcomes []crawl.Outcome
		res, err := h.crawler.Run(context.Background(), []string{"no separator here", mustangID}, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressItem {
				outcomes = append(outcomes, *e.Outcome)
			}
		})

		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.Equal(t, crawl.StatusSkipped, outcomes[0].Status)
		assert.Equal(t, corpus.EMALFORMED, corpus.ErrorCode(outcomes[0].Err))
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, 1, h.web.totalGets())
		require.NotEmpty(t, h.ledger.saves)
		assert.Equal(t, "no separator here", h.ledger.saves[0].LastProcessed)
	})

	t.Run("unknown source is skipped", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)

		var outcome crawl.Outcome
		res, err := h.crawler.Run(context.Background(), []string{"drive2::x"}, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressItem {
				outcome = *e.Outcome
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, corpus.EUNKNOWNSOURCE, corpus.ErrorCode(outcome.Err))
		assert.Equal(t, 0, h.web.totalGets())
	})

	t.Run("fetches the url chosen by the resolver", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		mirror := "https://mirror.example.org/Ford_Mustang"
		h.web.set(mirror, &page{body: words(150, "mirror")})
		var resolved corpus.Item
		h.crawler.Resolver = &mock.Resolver{
			ResolveFn: func(item corpus.Item) (string, error) {
				resolved = item
				return mirror, nil
			},
		}

		res, err := h.crawler.Run(context.Background(), []string{mustangID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, corpus.Item{Source: "wikipedia", Title: "Ford Mustang"}, resolved)
		assert.Equal(t, 1, h.web.gets[mirror])
		assert.Equal(t, 0, h.web.gets[mustangURL])
		require.NotNil(t, h.store.get(mirror))
	})

	t.Run("fetch failure is skipped and cursor still advances", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)

		res, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 0, h.store.writes())
		assert.Equal(t, articleID, h.ledger.progress().LastProcessed)
		assert.Equal(t, 0, h.ledger.progress().TotalDownloaded)
		assert.Equal(t, 0, h.pauses)
	})

	t.Run("probe failure skips the item", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(articleURL, &page{body: words(120, "a"), etag: `"abc"`})
		_, err := h.crawler.Run(context.Background(), []string{articleID}, nil)
		require.NoError(t, err)

		h.web.mu.Lock()
		delete(h.web.pages, articleURL)
		h.web.mu.Unlock()
		h.crawler.Restart = true
		res, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, 1, h.web.gets[articleURL])
		assert.Equal(t, 1, h.store.writes())
	})

	t.Run("resumes after stored cursor", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		ids := []string{"autoru::a", "autoru::b", "autoru::c"}
		for _, s := range []string{"a", "b", "c"} {
			h.web.set("https://auto.ru/articles/"+s+"/", &page{body: words(120, s)})
		}
		h.ledger.cur = corpus.Progress{LastProcessed: "autoru::a", TotalDownloaded: 7}

		var started crawl.ProgressEvent
		res, err := h.crawler.Run(context.Background(), ids, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressStarted {
				started = e
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, started.Index)
		assert.False(t, started.CursorLost)
		assert.Equal(t, 1, res.StartIndex)
		assert.Equal(t, 2, res.Inserted)
		assert.Equal(t, 0, h.web.gets["https://auto.ru/articles/a/"])
		assert.Equal(t, 9, h.ledger.progress().TotalDownloaded)
		assert.Equal(t, 9, res.TotalDownloaded)
	})

	t.Run("lost cursor restarts from the first item", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(articleURL, &page{body: words(120, "a")})
		h.ledger.cur = corpus.Progress{LastProcessed: "autoru::gone"}

		var started crawl.ProgressEvent
		res, err := h.crawler.Run(context.Background(), []string{articleID}, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressStarted {
				started = e
			}
		})

		require.NoError(t, err)
		assert.True(t, started.CursorLost)
		assert.Equal(t, 0, started.Index)
		assert.Equal(t, 1, res.Inserted)
	})

	t.Run("stops at max docs", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.crawler.MaxDocs = 2
		ids := []string{"autoru::a", "autoru::b", "autoru::c"}
		for _, s := range []string{"a", "b", "c"} {
			h.web.set("https://auto.ru/articles/"+s+"/", &page{body: words(120, s)})
		}

		res, err := h.crawler.Run(context.Background(), ids, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, res.Accepted)
		assert.Equal(t, 2, res.Processed)
		assert.Equal(t, 0, h.web.gets["https://auto.ru/articles/c/"])
		assert.Equal(t, "autoru::b", h.ledger.progress().LastProcessed)
	})

	t.Run("pauses only after accepted items", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		var delays []time.Duration
		h.crawler.Pause = func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}
		h.web.set(articleURL, &page{body: words(120, "a")})

		_, err := h.crawler.Run(context.Background(), []string{"bad", "drive2::x", articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{1500 * time.Millisecond}, delays)
	})

	t.Run("cancellation finishes the in-flight item then stops", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ids := []string{"autoru::a", "autoru::b", "autoru::c"}
		for _, s := range []string{"a", "b", "c"} {
			h.web.set("https://auto.ru/articles/"+s+"/", &page{body: words(120, s)})
		}
		inner := h.web.fetcher()
		h.crawler.Fetcher = &mock.Fetcher{
			HeadFn: inner.HeadFn,
			GetFn: func(fctx context.Context, url string) (*corpus.FetchResult, error) {
				if strings.HasSuffix(url, "/b/") {
					cancel()
					require.NoError(t, fctx.Err())
				}
				return inner.GetFn(fctx, url)
			},
		}

		res, err := h.crawler.Run(ctx, ids, nil)

		require.NoError(t, err)
		assert.True(t, res.Canceled)
		assert.Equal(t, 2, res.Inserted)
		assert.Equal(t, "autoru::b", h.ledger.progress().LastProcessed)
		assert.Equal(t, 0, h.web.gets["https://auto.ru/articles/c/"])
	})

	t.Run("keeps raw html when configured", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.crawler.KeepRawHTML = true
		body := words(120, "raw")
		h.web.set(articleURL, &page{body: body})

		_, err := h.crawler.Run(context.Background(), []string{articleID}, nil)

		require.NoError(t, err)
		assert.Equal(t, body, h.store.get(articleURL).RawHTML)
	})

	t.Run("ledger save failure aborts the run", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		h.web.set(articleURL, &page{body: words(120, "a")})
		h.crawler.Ledger = &mock.ProgressLedger{
			LoadProgressFn: func(context.Context) (*corpus.Progress, error) { return &corpus.Progress{}, nil },
			SaveProgressFn: func(context.Context, *corpus.Progress) error { return errors.New("disk full") },
		}

		_, err := h.crawler.Run(context.Background(), []string{articleID, "autoru::b"}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 1, h.web.totalGets())
	})

	t.Run("reports finished event with result", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t)
		var finished *crawl.Result
		_, err := h.crawler.Run(context.Background(), nil, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFinished {
				finished = e.Result
			}
		})

		require.NoError(t, err)
		require.NotNil(t, finished)
		assert.Equal(t, 0, finished.Processed)
	})
}

func TestStatus_Accepted(t *testing.T) {
	t.Parallel()

	assert.True(t, crawl.StatusInserted.Accepted())
	assert.True(t, crawl.StatusUpdated.Accepted())
	assert.True(t, crawl.StatusUnchanged.Accepted())
	assert.True(t, crawl.StatusIdentical.Accepted())
	assert.False(t, crawl.StatusRejected.Accepted())
	assert.False(t, crawl.StatusSkipped.Accepted())
	assert.Equal(t, "unchanged", crawl.StatusUnchanged.String())
}
