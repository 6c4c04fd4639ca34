// Package portfolio orchestrates the screenshot-to-draft pipeline: each
// uploaded image is OCR'd independently, the extracted candidates are
// classified, and everything is folded into one reconciled draft set.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/eddiefleurent/chain_scout/internal/drafts"
	"github.com/eddiefleurent/chain_scout/internal/ocr"
	"github.com/eddiefleurent/chain_scout/internal/vision"
)

// Image is one uploaded screenshot.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}

// ImageError reports a single image whose OCR call failed. One failed
// image never discards its siblings' results.
type ImageError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ScanResult is the outcome of one upload batch.
type ScanResult struct {
	SessionID   string       `json:"session_id"`
	Rows        []drafts.Row `json:"rows"`
	ImageErrors []ImageError `json:"image_errors,omitempty"`
}

// Scanner runs uploads through the vision collaborator and the OCR
// extraction pipeline.
type Scanner struct {
	vision vision.Client
	logger *logrus.Logger
	// maxConcurrent bounds simultaneous OCR calls per batch.
	maxConcurrent int
}

// NewScanner creates a scanner around the given vision client.
func NewScanner(client vision.Client, logger *logrus.Logger) *Scanner {
	return &Scanner{vision: client, logger: logger, maxConcurrent: 4}
}

// Scan OCRs every image concurrently, then folds the resulting candidate
// rows into the provided existing draft set sequentially, in upload
// order. The merge map is never touched from more than one goroutine:
// all OCR calls complete first, then the fold runs on the caller's
// goroutine.
func (s *Scanner) Scan(ctx context.Context, existing map[string]drafts.Row, images []Image) (*ScanResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to scan")
	}

	perImage := make([][]drafts.Row, len(images))
	errsByImage := make([]error, len(images))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i := range images {
		g.Go(func() error {
			res, err := s.vision.ExtractText(gctx, images[i].Data, images[i].MimeType)
			if err != nil {
				// Collaborator failure for one image is not fatal to the
				// batch; record it and move on.
				s.logger.WithError(err).WithField("image", images[i].Name).Warn("OCR extraction failed")
				mu.Lock()
				errsByImage[i] = err
				mu.Unlock()
				return nil
			}
			rows := ocr.ExtractRows(res)
			mu.Lock()
			perImage[i] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only a canceled context reaches here; extraction errors are
		// per-image.
		return nil, err
	}

	merged := existing
	var imageErrors []ImageError
	for i := range images {
		if errsByImage[i] != nil {
			imageErrors = append(imageErrors, ImageError{Name: images[i].Name, Error: errsByImage[i].Error()})
			continue
		}
		merged = drafts.Merge(merged, perImage[i])
	}

	result := &ScanResult{
		SessionID:   uuid.New().String(),
		Rows:        sortedRows(merged),
		ImageErrors: imageErrors,
	}
	s.logger.WithFields(logrus.Fields{
		"images": len(images),
		"failed": len(imageErrors),
		"rows":   len(result.Rows),
	}).Info("portfolio scan complete")
	return result, nil
}

// sortedRows flattens the merge map in a stable, reviewable order.
func sortedRows(merged map[string]drafts.Row) []drafts.Row {
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]drafts.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, merged[k])
	}
	return rows
}
