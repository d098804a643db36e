package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rzaw/delivery-proof/internal/core/domain"
	"github.com/rzaw/delivery-proof/internal/port"
)

// signedURLTTL is the validity window attached to every query result.
const signedURLTTL = time.Hour

var (
	ErrEmptyPayload  = errors.New("screenshot payload is empty")
	ErrMissingField  = errors.New("missing required field")
	ErrBadKeySegment = errors.New("company and date must not contain underscores")
)

// ScreenshotArchive stores proof-of-delivery screenshots in the blob
// store under deterministic keys and answers company-scoped date-range
// queries by re-parsing those keys.
type ScreenshotArchive struct {
	blobs port.BlobStore
}

func NewScreenshotArchive(blobs port.BlobStore) *ScreenshotArchive {
	return &ScreenshotArchive{blobs: blobs}
}

// Store archives one screenshot and returns its derived object key,
// "<date>_<company>_<epochMillis>". The company and date segments must
// not contain the key delimiter, or queries could not re-derive them.
func (a *ScreenshotArchive) Store(ctx context.Context, payload []byte, contentType, company, date string) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	if company == "" || date == "" {
		return "", ErrMissingField
	}
	if strings.Contains(company, "_") || strings.Contains(date, "_") {
		return "", ErrBadKeySegment
	}

	key := domain.ScreenshotKey(date, company, time.Now().UnixMilli())

	metadata := map[string]string{
		"company": company,
		"date":    date,
	}
	if err := a.blobs.Put(ctx, key, contentType, metadata, payload); err != nil {
		return "", fmt.Errorf("store screenshot %s: %w: %w", key, ErrStorageWrite, err)
	}

	return key, nil
}

// Query returns the archived screenshots for company whose key date
// falls in [startDate, endDate], each with a signed read URL.
//
// The listing prefix is fixed to startDate, so only objects uploaded on
// the startDate boundary are ever candidates; endDate acts purely as
// the upper filter. Dates are YYYY-MM-DD and compared lexicographically.
func (a *ScreenshotArchive) Query(ctx context.Context, company, startDate, endDate string) ([]domain.ScreenshotSummary, error) {
	if company == "" || startDate == "" || endDate == "" {
		return nil, ErrMissingField
	}

	prefix := startDate + "_" + company + "_"
	keys, err := a.blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list screenshots %s: %w: %w", prefix, ErrStorageRead, err)
	}

	summaries := make([]domain.ScreenshotSummary, 0, len(keys))
	for _, key := range keys {
		date, keyCompany, ok := domain.SplitScreenshotKey(key)
		if !ok {
			continue
		}
		if date > endDate || keyCompany != company {
			continue
		}

		url, err := a.blobs.SignedURL(ctx, key, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("sign %s: %w: %w", key, ErrStorageRead, err)
		}

		summaries = append(summaries, domain.ScreenshotSummary{
			Key:     key,
			Date:    date,
			Company: keyCompany,
			URL:     url,
		})
	}

	return summaries, nil
}
