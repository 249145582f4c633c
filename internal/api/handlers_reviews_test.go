// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/tomtom215/yamdb/internal/audit"
	"github.com/tomtom215/yamdb/internal/models"
)

func newTitle(t *testing.T, env *testEnv, adminTok, name string) string {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/api/v1/titles", adminTok, map[string]interface{}{"name": name, "year": 2001})
	expect(t, resp, http.StatusCreated)
	var title models.Title
	resp.decode(t, &title)
	return fmt.Sprintf("/api/v1/titles/%d", title.ID)
}

func TestReviews_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.account(t, "admin1", models.RoleAdmin, false)
	_, aliceTok := env.account(t, "alice", models.RoleUser, false)
	_, bobTok := env.account(t, "bob", models.RoleUser, false)
	_, modTok := env.account(t, "mod", models.RoleModerator, false)

	titlePath := newTitle(t, env, adminTok, "Amelie")
	reviews := titlePath + "/reviews"

	// Parent resolution comes before the authentication check.
	expect(t, env.do(t, http.MethodPost, "/api/v1/titles/9999/reviews", "", map[string]interface{}{"text": "x", "score": 5}), http.StatusNotFound)
	expect(t, env.do(t, http.MethodPost, reviews, "", map[string]interface{}{"text": "x", "score": 5}), http.StatusUnauthorized)

	for _, score := range []int{0, 11} {
		resp := env.do(t, http.MethodPost, reviews, aliceTok, map[string]interface{}{"text": "x", "score": score})
		expect(t, resp, http.StatusBadRequest)
	}

	resp := env.do(t, http.MethodPost, reviews, aliceTok, map[string]interface{}{"text": "Lovely", "score": 9})
	expect(t, resp, http.StatusCreated)
	var review models.Review
	resp.decode(t, &review)
	if review.Author != "alice" || review.Score != 9 {
		t.Errorf("review = %+v", review)
	}
	reviewPath := fmt.Sprintf("%s/%d", reviews, review.ID)

	resp = env.do(t, http.MethodPost, reviews, aliceTok, map[string]interface{}{"text": "Again", "score": 1})
	expect(t, resp, http.StatusConflict)
	if resp.body.Error.Code != CodeConflict {
		t.Errorf("code = %s", resp.body.Error.Code)
	}

	expect(t, env.do(t, http.MethodPost, reviews, bobTok, map[string]interface{}{"text": "Meh", "score": 6}), http.StatusCreated)

	resp = env.do(t, http.MethodGet, titlePath, "", nil)
	var title models.Title
	resp.decode(t, &title)
	if title.Rating == nil || *title.Rating != 7.5 {
		t.Errorf("rating = %v, want 7.5", title.Rating)
	}

	patch := map[string]interface{}{"score": 8}
	expect(t, env.do(t, http.MethodPatch, reviewPath, "", patch), http.StatusUnauthorized)
	expect(t, env.do(t, http.MethodPatch, reviewPath, bobTok, patch), http.StatusForbidden)
	expect(t, env.do(t, http.MethodPatch, reviewPath, aliceTok, patch), http.StatusOK)
	expect(t, env.do(t, http.MethodPatch, reviewPath, modTok, map[string]interface{}{"text": "moderated"}), http.StatusOK)
	expect(t, env.do(t, http.MethodPatch, reviewPath, aliceTok, map[string]interface{}{"score": 42}), http.StatusBadRequest)

	// A review is only reachable under its own title.
	otherPath := newTitle(t, env, adminTok, "Other")
	expect(t, env.do(t, http.MethodGet, fmt.Sprintf("%s/reviews/%d", otherPath, review.ID), "", nil), http.StatusNotFound)

	resp = env.do(t, http.MethodGet, reviews, "", nil)
	expect(t, resp, http.StatusOK)
	var page Paginated
	resp.decode(t, &page)
	if page.Count != 2 {
		t.Errorf("review count = %d, want 2", page.Count)
	}

	expect(t, env.do(t, http.MethodDelete, reviewPath, bobTok, nil), http.StatusForbidden)
	expect(t, env.do(t, http.MethodDelete, reviewPath, adminTok, nil), http.StatusNoContent)
	expect(t, env.do(t, http.MethodGet, reviewPath, "", nil), http.StatusNotFound)

	env.waitForEvents(t, audit.EventTypeAuthzDenied, 3)
}

func TestReviews_ConcurrentDuplicate(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.account(t, "admin1", models.RoleAdmin, false)
	_, aliceTok := env.account(t, "alice", models.RoleUser, false)
	reviews := newTitle(t, env, adminTok, "Race") + "/reviews"

	const n = 6
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.do(t, http.MethodPost, reviews, aliceTok, map[string]interface{}{"text": "mine", "score": 5})
			codes[i] = resp.Code
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	if created != 1 || conflicts != n-1 {
		t.Errorf("created = %d, conflicts = %d; codes %v", created, conflicts, codes)
	}
}

func TestComments_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.account(t, "admin1", models.RoleAdmin, false)
	_, aliceTok := env.account(t, "alice", models.RoleUser, false)
	_, bobTok := env.account(t, "bob", models.RoleUser, false)
	_, modTok := env.account(t, "mod", models.RoleModerator, false)

	reviews := newTitle(t, env, adminTok, "Brazil") + "/reviews"
	resp := env.do(t, http.MethodPost, reviews, aliceTok, map[string]interface{}{"text": "Great", "score": 10})
	expect(t, resp, http.StatusCreated)
	var review models.Review
	resp.decode(t, &review)
	comments := fmt.Sprintf("%s/%d/comments", reviews, review.ID)

	expect(t, env.do(t, http.MethodPost, reviews+"/9999/comments", bobTok, map[string]string{"text": "hi"}), http.StatusNotFound)
	expect(t, env.do(t, http.MethodPost, comments, "", map[string]string{"text": "hi"}), http.StatusUnauthorized)
	expect(t, env.do(t, http.MethodPost, comments, bobTok, map[string]string{"text": ""}), http.StatusBadRequest)

	resp = env.do(t, http.MethodPost, comments, bobTok, map[string]string{"text": "Agreed"})
	expect(t, resp, http.StatusCreated)
	var comment models.Comment
	resp.decode(t, &comment)
	if comment.Author != "bob" {
		t.Errorf("comment author = %q", comment.Author)
	}
	commentPath := fmt.Sprintf("%s/%d", comments, comment.ID)

	expect(t, env.do(t, http.MethodGet, commentPath, "", nil), http.StatusOK)
	expect(t, env.do(t, http.MethodPatch, commentPath, aliceTok, map[string]string{"text": "edited"}), http.StatusForbidden)
	expect(t, env.do(t, http.MethodPatch, commentPath, bobTok, map[string]string{"text": "edited"}), http.StatusOK)
	expect(t, env.do(t, http.MethodDelete, commentPath, modTok, nil), http.StatusNoContent)

	resp = env.do(t, http.MethodGet, comments, "", nil)
	expect(t, resp, http.StatusOK)
	var page Paginated
	resp.decode(t, &page)
	if page.Count != 0 {
		t.Errorf("comment count = %d, want 0", page.Count)
	}
}
