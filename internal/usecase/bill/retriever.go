package bill

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"legal-llama/internal/domain"
	"legal-llama/internal/logger"
	"legal-llama/internal/xmltext"
)

// xmlFormatIndex is where the text API has historically listed the XML rendering.
// Only used when no format declares its type.
const xmlFormatIndex = 2

type SearchHit struct {
	BillID   string
	BillType string
	Number   string
	Title    string
}

type Format struct {
	Type string
	URL  string
}

type TextVersion struct {
	Type    string
	Formats []Format
}

type Searcher interface {
	SearchBills(ctx context.Context, query string) ([]SearchHit, error)
}

type TextLocator interface {
	TextVersions(ctx context.Context, bill domain.BillCandidate) ([]TextVersion, error)
}

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

type Retriever struct {
	search  Searcher
	texts   TextLocator
	fetcher DocumentFetcher
	log     *zap.Logger
}

func NewRetriever(search Searcher, texts TextLocator, fetcher DocumentFetcher, log *zap.Logger) *Retriever {
	return &Retriever{
		search:  search,
		texts:   texts,
		fetcher: fetcher,
		log:     logger.OrNop(log),
	}
}

// GetBillByQuery returns the text of the most recent bill matching query that
// has a parseable XML rendering. Candidates that fail at any step are skipped.
func (r *Retriever) GetBillByQuery(ctx context.Context, query string) (string, error) {
	hits, err := r.search.SearchBills(ctx, query)
	if err != nil {
		r.log.Warn("bill search failed", zap.String("query", query), zap.Error(err))
		return "", err
	}
	if len(hits) == 0 {
		r.log.Info("no bills matched", zap.String("query", query))
		return "", fmt.Errorf("%w: no bills match %q", domain.ErrNoBillText, query)
	}

	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate, err := domain.ParseBillCandidate(hit.BillID, hit.BillType, hit.Number)
		if err != nil {
			r.log.Warn("skipping bill with malformed identifiers", zap.String("bill_id", hit.BillID), zap.Error(err))
			continue
		}

		text, err := r.billText(ctx, candidate)
		if err != nil {
			r.log.Info("no usable text for bill", zap.Stringer("bill", candidate), zap.Error(err))
			continue
		}

		r.log.Info("retrieved bill text",
			zap.Stringer("bill", candidate),
			zap.String("title", hit.Title),
			zap.Int("chars", len(text)),
		)
		return text, nil
	}

	return "", fmt.Errorf("%w: none of %d bills had retrievable text", domain.ErrNoBillText, len(hits))
}

func (r *Retriever) billText(ctx context.Context, candidate domain.BillCandidate) (string, error) {
	versions, err := r.texts.TextVersions(ctx, candidate)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: no text versions published", domain.ErrNoBillText)
	}

	url, err := SelectXMLFormat(versions[0].Formats)
	if err != nil {
		return "", err
	}

	data, err := r.fetcher.FetchDocument(ctx, url)
	if err != nil {
		return "", err
	}

	return xmltext.ExtractBytes(data)
}

// SelectXMLFormat picks the XML rendering by its declared type, falling back
// to the historical position when the provider omits types.
func SelectXMLFormat(formats []Format) (string, error) {
	typed := false
	for _, f := range formats {
		if f.Type != "" {
			typed = true
		}
		if strings.Contains(strings.ToLower(f.Type), "xml") && f.URL != "" {
			return f.URL, nil
		}
	}

	if !typed && len(formats) > xmlFormatIndex && formats[xmlFormatIndex].URL != "" {
		return formats[xmlFormatIndex].URL, nil
	}

	return "", fmt.Errorf("%w: no xml format among %d formats", domain.ErrBadResponse, len(formats))
}
