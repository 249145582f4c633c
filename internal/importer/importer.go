// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/yamdb/internal/logging"
	"github.com/tomtom215/yamdb/internal/metrics"
	"github.com/tomtom215/yamdb/internal/models"
	"github.com/tomtom215/yamdb/internal/validation"
)

// ErrUnknownReference is wrapped by row errors whose foreign key names a
// row that was not imported.
var ErrUnknownReference = errors.New("unknown reference")

// Store is the write side of the catalog used by the importer.
// *database.DB satisfies it.
type Store interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	CreateCategory(ctx context.Context, c *models.Category) error
	CreateGenre(ctx context.Context, g *models.Genre) error
	CreateTitle(ctx context.Context, in models.TitleInput) (*models.Title, error)
	AddTitleGenre(ctx context.Context, titleID int64, genreSlug string) error
	CreateReview(ctx context.Context, r *models.Review) (*models.Review, error)
	CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
}

// Options controls an import run.
type Options struct {
	// Dir holds the CSV files.
	Dir string

	// SkipInvalid logs and counts bad rows instead of aborting.
	SkipInvalid bool
}

// RowError reports the file and line of a rejected row.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// FileStats is the outcome for one CSV file.
type FileStats struct {
	File     string        `json:"file"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Missing  bool          `json:"missing,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summary is the outcome of a run.
type Summary struct {
	Files     []FileStats `json:"files"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Totals sums imported and skipped rows over all files.
func (s *Summary) Totals() (imported, skipped int) {
	for _, f := range s.Files {
		imported += f.Imported
		skipped += f.Skipped
	}
	return imported, skipped
}

// Importer loads one dataset. It is not safe for concurrent use.
type Importer struct {
	store Store
	opts  Options

	// Dataset key -> storage identity.
	users      map[string]int64
	categories map[string]string
	genres     map[string]string
	titles     map[string]int64
	reviews    map[string]int64
}

// New returns an importer writing to store.
func New(store Store, opts Options) *Importer {
	return &Importer{
		store:      store,
		opts:       opts,
		users:      make(map[string]int64),
		categories: make(map[string]string),
		genres:     make(map[string]string),
		titles:     make(map[string]int64),
		reviews:    make(map[string]int64),
	}
}

type step struct {
	file   string
	handle func(ctx context.Context, rec record) error
}

func (i *Importer) steps() []step {
	return []step{
		{"users.csv", i.importUser},
		{"category.csv", i.importCategory},
		{"genre.csv", i.importGenre},
		{"titles.csv", i.importTitle},
		{"genre_title.csv", i.importGenreTitle},
		{"review.csv", i.importReview},
		{"comments.csv", i.importComment},
	}
}

// Run imports every file in order. On an aborting row error the summary
// covers the files processed so far.
func (i *Importer) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{StartTime: time.Now()}
	defer func() {
		summary.EndTime = time.Now()
		metrics.ImportDuration.Observe(summary.Duration().Seconds())
	}()

	for _, s := range i.steps() {
		stats, err := i.importFile(ctx, s)
		summary.Files = append(summary.Files, stats)
		if err != nil {
			return summary, err
		}
	}

	imported, skipped := summary.Totals()
	logging.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Dur("duration", time.Since(summary.StartTime)).
		Msg("Import complete")
	return summary, nil
}

func (i *Importer) importFile(ctx context.Context, s step) (stats FileStats, err error) {
	stats.File = s.file
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	f, err := os.Open(filepath.Join(i.opts.Dir, s.file))
	if errors.Is(err, os.ErrNotExist) {
		logging.Warn().Str("file", s.file).Msg("CSV file not found, skipping")
		stats.Missing = true
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", s.file, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("file", s.file).Msg("Error closing CSV file")
		}
	}()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read %s header: %w", s.file, err)
	}
	for n := range header {
		header[n] = strings.TrimSpace(strings.TrimPrefix(header[n], "\ufeff"))
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return stats, &RowError{File: s.file, Line: perr.StartLine, Err: perr.Err}
			}
			return stats, fmt.Errorf("read %s: %w", s.file, err)
		}
		line, _ := r.FieldPos(0)

		rec := make(record, len(header))
		for n, name := range header {
			rec[name] = fields[n]
		}

		if err := s.handle(ctx, rec); err != nil {
			rowErr := &RowError{File: s.file, Line: line, Err: err}
			if !i.opts.SkipInvalid {
				metrics.RecordImportRow(s.file, "failed")
				return stats, rowErr
			}
			logging.Warn().Str("file", s.file).Int("line", line).Err(err).Msg("Skipping invalid row")
			metrics.RecordImportRow(s.file, "skipped")
			stats.Skipped++
			continue
		}
		metrics.RecordImportRow(s.file, "imported")
		stats.Imported++
	}

	logging.Info().
		Str("file", s.file).
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Msg("CSV file imported")
	return stats, nil
}

func unknown(field, key string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownReference, field, key)
}

// validated returns nil or the row's validation error as a plain error,
// avoiding a typed nil.
func validated(row interface{}) error {
	if verr := validation.ValidateStruct(row); verr != nil {
		return verr
	}
	return nil
}

func (i *Importer) importUser(ctx context.Context, rec record) error {
	row := userRow{
		ID:        rec.get("id"),
		Username:  rec.get("username"),
		Email:     rec.get("email"),
		Role:      rec.get("role"),
		Bio:       rec.get("bio"),
		FirstName: rec.get("first_name"),
		LastName:  rec.get("last_name"),
	}
	if err := validated(row); err != nil {
		return err
	}

	a := &models.Account{
		Username:  row.Username,
		Email:     row.Email,
		Role:      models.Role(row.Role),
		Bio:       row.Bio,
		FirstName: row.FirstName,
		LastName:  row.LastName,
	}
	if err := i.store.CreateAccount(ctx, a); err != nil {
		return err
	}
	i.users[row.ID] = a.ID
	return nil
}

func (i *Importer) importCategory(ctx context.Context, rec record) error {
	row := sluggedRow{ID: rec.get("id"), Name: rec.get("name"), Slug: rec.get("slug")}
	if err := validated(row); err != nil {
		return err
	}
	if err := i.store.CreateCategory(ctx, &models.Category{Name: row.Name, Slug: row.Slug}); err != nil {
		return err
	}
	i.categories[row.ID] = row.Slug
	return nil
}

func (i *Importer) importGenre(ctx context.Context, rec record) error {
	row := sluggedRow{ID: rec.get("id"), Name: rec.get("name"), Slug: rec.get("slug")}
	if err := validated(row); err != nil {
		return err
	}
	if err := i.store.CreateGenre(ctx, &models.Genre{Name: row.Name, Slug: row.Slug}); err != nil {
		return err
	}
	i.genres[row.ID] = row.Slug
	return nil
}

func (i *Importer) importTitle(ctx context.Context, rec record) error {
	year, verr := rec.intField("year")
	if verr != nil {
		return verr
	}
	row := titleRow{
		ID:          rec.get("id"),
		Name:        rec.get("name"),
		Year:        year,
		Category:    rec.get("category"),
		Description: rec.get("description"),
	}
	if err := validated(row); err != nil {
		return err
	}

	in := models.TitleInput{Name: row.Name, Year: row.Year, Description: row.Description}
	if row.Category != "" {
		slug, ok := i.categories[row.Category]
		if !ok {
			return unknown("category", row.Category)
		}
		in.CategorySlug = slug
	}

	title, err := i.store.CreateTitle(ctx, in)
	if err != nil {
		return err
	}
	i.titles[row.ID] = title.ID
	return nil
}

func (i *Importer) importGenreTitle(ctx context.Context, rec record) error {
	row := genreTitleRow{TitleID: rec.get("title_id"), GenreID: rec.get("genre_id")}
	if err := validated(row); err != nil {
		return err
	}
	titleID, ok := i.titles[row.TitleID]
	if !ok {
		return unknown("title_id", row.TitleID)
	}
	slug, ok := i.genres[row.GenreID]
	if !ok {
		return unknown("genre_id", row.GenreID)
	}
	return i.store.AddTitleGenre(ctx, titleID, slug)
}

func (i *Importer) importReview(ctx context.Context, rec record) error {
	score, verr := rec.intField("score")
	if verr != nil {
		return verr
	}
	pub, verr := rec.timeField("pub_date")
	if verr != nil {
		return verr
	}
	row := reviewRow{
		ID:      rec.get("id"),
		TitleID: rec.get("title_id"),
		Author:  rec.get("author"),
		Text:    rec.get("text"),
		Score:   score,
		PubDate: pub,
	}
	if err := validated(row); err != nil {
		return err
	}

	titleID, ok := i.titles[row.TitleID]
	if !ok {
		return unknown("title_id", row.TitleID)
	}
	authorID, ok := i.users[row.Author]
	if !ok {
		return unknown("author", row.Author)
	}

	review, err := i.store.CreateReview(ctx, &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     row.Text,
		Score:    row.Score,
		PubDate:  row.PubDate,
	})
	if err != nil {
		return err
	}
	i.reviews[row.ID] = review.ID
	return nil
}

func (i *Importer) importComment(ctx context.Context, rec record) error {
	pub, verr := rec.timeField("pub_date")
	if verr != nil {
		return verr
	}
	row := commentRow{
		ID:       rec.get("id"),
		ReviewID: rec.get("review_id"),
		Author:   rec.get("author"),
		Text:     rec.get("text"),
		PubDate:  pub,
	}
	if err := validated(row); err != nil {
		return err
	}

	reviewID, ok := i.reviews[row.ReviewID]
	if !ok {
		return unknown("review_id", row.ReviewID)
	}
	authorID, ok := i.users[row.Author]
	if !ok {
		return unknown("author", row.Author)
	}

	_, err := i.store.CreateComment(ctx, &models.Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     row.Text,
		PubDate:  row.PubDate,
	})
	return err
}
