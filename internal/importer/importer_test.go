// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/yamdb/internal/config"
	"github.com/tomtom215/yamdb/internal/database"
	"github.com/tomtom215/yamdb/internal/models"
	"github.com/tomtom215/yamdb/internal/validation"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// dataset uses source IDs far from the fresh storage IDs so remapping
// mistakes show up as unknown references.
func dataset() map[string]string {
	return map[string]string{
		"users.csv": "\ufeffid,username,email,role,bio,first_name,last_name\n" +
			"100,bingobongo,bingo@yamdb.fake,user,,,\n" +
			"101,capt_obvious,capt@yamdb.fake,admin,,Capt,\n" +
			"102,faust,faust@yamdb.fake,moderator,\"likes \"\"quotes\"\", commas\",,\n",
		"category.csv": "id,name,slug\n" +
			"7,Фильм,movie\n" +
			"8,Книга,book\n",
		"genre.csv": "id,name,slug\n" +
			"50,Драма,drama\n" +
			"51,Комедия,comedy\n",
		"titles.csv": "id,name,year,category\n" +
			"200,Побег из Шоушенка,1994,7\n" +
			"201,Война и мир,1869,8\n",
		"genre_title.csv": "id,title_id,genre_id\n" +
			"1,200,50\n" +
			"2,201,50\n" +
			"3,201,51\n",
		"review.csv": "id,title_id,text,author,score,pub_date\n" +
			"300,200,Great,100,10,2019-09-24T21:08:21.567Z\n" +
			"301,200,Fine,101,5,2019-09-24T21:08:21.567Z\n",
		"comments.csv": "id,review_id,text,author,pub_date\n" +
			"400,300,Agreed,102,2019-09-24T21:08:21.567Z\n",
	}
}

func TestImporter_FullDataset(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	summary, err := New(db, Options{Dir: writeFiles(t, dataset())}).Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]int{
		"users.csv": 3, "category.csv": 2, "genre.csv": 2, "titles.csv": 2,
		"genre_title.csv": 3, "review.csv": 2, "comments.csv": 1,
	}
	if len(summary.Files) != len(want) {
		t.Fatalf("files = %+v", summary.Files)
	}
	for _, f := range summary.Files {
		if f.Imported != want[f.File] || f.Skipped != 0 {
			t.Errorf("%s: imported %d skipped %d, want %d", f.File, f.Imported, f.Skipped, want[f.File])
		}
	}

	admin, err := db.GetAccountByUsername(ctx, "capt_obvious")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != models.RoleAdmin || admin.IsActive {
		t.Errorf("admin = %+v", admin)
	}

	titles, count, err := db.ListTitles(ctx, models.TitleFilter{Genre: "drama", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("drama titles = %d, want 2", count)
	}
	for _, title := range titles {
		if title.Name == "Побег из Шоушенка" {
			if title.Category == nil || title.Category.Slug != "movie" {
				t.Errorf("category = %+v", title.Category)
			}
			if title.Rating == nil || *title.Rating != 7.5 {
				t.Errorf("rating = %v, want 7.5", title.Rating)
			}
			reviews, _, err := db.ListReviews(ctx, title.ID, models.Page{Limit: 10})
			if err != nil {
				t.Fatal(err)
			}
			if len(reviews) != 2 || reviews[0].PubDate.Year() != 2019 {
				t.Errorf("reviews = %+v", reviews)
			}
		}
	}
}

func TestImporter_InvalidRowAborts(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		body     string
		wantLine int
		check    func(error) bool
	}{
		{
			name:     "invalid role",
			file:     "users.csv",
			body:     "id,username,email,role\n1,ok,ok@x.com,user\n2,bad,bad@x.com,owner\n",
			wantLine: 3,
			check: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr)
			},
		},
		{
			name:     "reserved username",
			file:     "users.csv",
			body:     "id,username,email,role\n1,Me,me@x.com,user\n",
			wantLine: 2,
			check: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr)
			},
		},
		{
			name:     "duplicate username any case",
			file:     "users.csv",
			body:     "id,username,email,role\n1,bob,b1@x.com,user\n2,BOB,b2@x.com,user\n",
			wantLine: 3,
			check:    func(err error) bool { return errors.Is(err, database.ErrConflict) },
		},
		{
			name:     "unknown category key",
			file:     "titles.csv",
			body:     "id,name,year,category\n1,Heat,1995,42\n",
			wantLine: 2,
			check:    func(err error) bool { return errors.Is(err, ErrUnknownReference) },
		},
		{
			name:     "non-numeric year",
			file:     "titles.csv",
			body:     "id,name,year,category\n1,Heat,nineteen,\n",
			wantLine: 2,
			check: func(err error) bool {
				var verr *validation.RequestValidationError
				return errors.As(err, &verr)
			},
		},
		{
			name:     "ragged row",
			file:     "category.csv",
			body:     "id,name,slug\n1,Films\n",
			wantLine: 2,
			check:    func(err error) bool { return err != nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			dir := writeFiles(t, map[string]string{tt.file: tt.body})

			_, err := New(db, Options{Dir: dir}).Run(context.Background())
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("Run() error = %v, want *RowError", err)
			}
			if rowErr.File != tt.file || rowErr.Line != tt.wantLine {
				t.Errorf("row error at %s:%d, want %s:%d", rowErr.File, rowErr.Line, tt.file, tt.wantLine)
			}
			if !tt.check(err) {
				t.Errorf("unexpected cause: %v", err)
			}
		})
	}
}

func TestImporter_SkipInvalid(t *testing.T) {
	db := setupDB(t)
	files := dataset()
	// A second review by the same author on the same title, a score out of
	// range and a review by an author that was never imported.
	files["review.csv"] += "302,200,Again,100,3,\n" +
		"303,201,Too high,100,11,\n" +
		"304,201,Ghost,999,5,\n"

	summary, err := New(db, Options{Dir: writeFiles(t, files), SkipInvalid: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, f := range summary.Files {
		if f.File == "review.csv" && (f.Imported != 2 || f.Skipped != 3) {
			t.Errorf("review.csv = %+v, want 2 imported 3 skipped", f)
		}
	}
	imported, skipped := summary.Totals()
	if imported != 15 || skipped != 3 {
		t.Errorf("totals = %d/%d, want 15/3", imported, skipped)
	}
}

func TestImporter_MissingFiles(t *testing.T) {
	db := setupDB(t)
	dir := writeFiles(t, map[string]string{"genre.csv": "id,name,slug\n1,Drama,drama\n"})

	summary, err := New(db, Options{Dir: dir}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var missing int
	for _, f := range summary.Files {
		if f.Missing {
			missing++
		}
	}
	if missing != 6 {
		t.Errorf("missing files = %d, want 6", missing)
	}
	if _, err := db.GetGenreBySlug(context.Background(), "drama"); err != nil {
		t.Errorf("genre not imported: %v", err)
	}
}
