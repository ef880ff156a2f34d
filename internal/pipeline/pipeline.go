// Package pipeline turns one stack photo into appended book records: it
// validates the capture request, asks the vision provider for the stack
// listing, parses it, stamps each entry with its shelf location, and
// appends the batch to the session's record store.
package pipeline

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/boekenzolder/stackscan/internal/location"
	"github.com/boekenzolder/stackscan/internal/metrics"
	"github.com/boekenzolder/stackscan/internal/models"
	"github.com/boekenzolder/stackscan/internal/providers"
	"github.com/boekenzolder/stackscan/internal/recognize"
	"github.com/boekenzolder/stackscan/internal/store"
)

// CaptureRequest carries one stack photo and its shelf coordinate, fields
// as they arrive from the multipart form.
type CaptureRequest struct {
	SessionID string
	Row       string
	Column    string
	Face      string
	Prefix    string
	Image     []byte
	MimeType  string
}

// Result is the outcome of a successful pipeline run. Records is empty when
// the model recognized nothing; that is not an error.
type Result struct {
	Records []models.BookRecord
	Message string
}

// Pipeline orchestrates validation, recognition, parsing, and storage.
type Pipeline struct {
	store      store.Store
	provider   providers.Provider
	metrics    *metrics.Metrics
	uploadsDir string
	model      string
	temp       float64
	cache      *lru.Cache[string, string]
}

// Options configures a Pipeline.
type Options struct {
	Store      store.Store
	Provider   providers.Provider
	Metrics    *metrics.Metrics
	UploadsDir string
	Model      string
	Temp       float64
	// CacheSize is the number of recognition replies kept, keyed by image
	// hash. Zero disables the cache.
	CacheSize int
}

// New builds a Pipeline from options.
func New(opts Options) (*Pipeline, error) {
	p := &Pipeline{
		store:      opts.Store,
		provider:   opts.Provider,
		metrics:    opts.Metrics,
		uploadsDir: opts.UploadsDir,
		model:      opts.Model,
		temp:       opts.Temp,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create recognition cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// ProcessStack runs one capture end to end. The spooled image is removed on
// every exit path, including cancellation.
func (p *Pipeline) ProcessStack(ctx context.Context, req CaptureRequest) (*Result, error) {
	row, err := p.validate(req)
	if err != nil {
		p.metrics.CapturesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := p.store.Ensure(ctx, req.SessionID); err != nil {
		p.metrics.CapturesTotal.WithLabelValues("storage_error").Inc()
		return nil, StorageError{Op: "ensure", Err: err}
	}

	imagePath, err := p.spoolImage(req)
	if err != nil {
		p.metrics.CapturesTotal.WithLabelValues("storage_error").Inc()
		return nil, StorageError{Op: "spool image", Err: err}
	}
	defer func() {
		if err := os.Remove(imagePath); err != nil {
			slog.Warn("Failed to remove temporary image", "path", imagePath, "err", err)
		}
	}()

	raw, err := p.recognize(ctx, req)
	if err != nil {
		p.metrics.CapturesTotal.WithLabelValues("collaborator_error").Inc()
		return nil, CollaboratorError{Err: err}
	}

	entries := recognize.ParseListing(raw)
	if len(entries) == 0 {
		slog.Info("No books recognized", "session_id", req.SessionID)
		p.metrics.CapturesTotal.WithLabelValues("empty").Inc()
		return &Result{Message: "no books recognized in the image"}, nil
	}

	face := models.Face(req.Face)
	loc := location.Encode(row, req.Column, req.Prefix)
	now := time.Now().UTC().Format(time.RFC3339)

	records := make([]models.BookRecord, 0, len(entries))
	for i, entry := range entries {
		records = append(records, models.BookRecord{
			Title:           entry.Title,
			Author:          entry.Author,
			Row:             row,
			Column:          req.Column,
			Location:        loc,
			Face:            face,
			PositionOnStack: i + 1,
			Timestamp:       now,
		})
	}

	if err := p.store.Append(ctx, req.SessionID, records); err != nil {
		p.metrics.CapturesTotal.WithLabelValues("storage_error").Inc()
		return nil, StorageError{Op: "append", Err: err}
	}

	p.metrics.CapturesTotal.WithLabelValues("success").Inc()
	p.metrics.BooksRecognized.Add(float64(len(records)))
	slog.Info("Stack processed", "session_id", req.SessionID, "location", loc, "face", face, "books", len(records))

	return &Result{
		Records: records,
		Message: fmt.Sprintf("%d books added to session", len(records)),
	}, nil
}

// validate applies the capture checks in order; the first failure wins.
func (p *Pipeline) validate(req CaptureRequest) (int, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return 0, ValidationError{Field: "sessionId", Reason: "no session given"}
	}
	if !store.ValidID(req.SessionID) {
		return 0, ValidationError{Field: "sessionId", Reason: "session id may only contain letters, digits, underscores and dashes"}
	}
	if len(req.Image) == 0 {
		return 0, ValidationError{Field: "image", Reason: "no image uploaded"}
	}
	if req.Row == "" || req.Column == "" || req.Face == "" {
		return 0, ValidationError{Field: "location", Reason: "row, column and face are required"}
	}
	if !models.Face(req.Face).Valid() {
		return 0, ValidationError{Field: "face", Reason: `face must be "front" or "back"`}
	}
	row, err := strconv.Atoi(req.Row)
	if err != nil || row < 1 {
		return 0, ValidationError{Field: "row", Reason: "row must be a positive number"}
	}
	return row, nil
}

// spoolImage writes the upload to a uniquely named temporary file under the
// uploads dir. The caller removes it when the capture finishes.
func (p *Pipeline) spoolImage(req CaptureRequest) (string, error) {
	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	ext := ".jpg"
	if exts, err := mime.ExtensionsByType(req.MimeType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	path := filepath.Join(p.uploadsDir, uuid.New().String()+ext)
	if err := os.WriteFile(path, req.Image, 0644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}

// recognize returns the raw stack listing for the image, consulting the
// cache before the vision provider.
func (p *Pipeline) recognize(ctx context.Context, req CaptureRequest) (string, error) {
	key := fmt.Sprintf("%x|%s", md5.Sum(req.Image), p.model)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			p.metrics.RecognitionCacheHit.Inc()
			slog.Debug("Recognition cache hit", "session_id", req.SessionID)
			return cached, nil
		}
	}

	start := time.Now()
	raw, err := p.provider.ExtractText(ctx, providers.Config{
		Model:       p.model,
		Temperature: p.temp,
		Prompt:      recognize.StackPrompt(),
		Image:       req.Image,
		MimeType:    req.MimeType,
	})
	p.metrics.ObserveVisionCall(start)
	if err != nil {
		return "", err
	}

	raw = strings.TrimSpace(raw)
	if p.cache != nil && raw != "" {
		p.cache.Add(key, raw)
	}
	return raw, nil
}
