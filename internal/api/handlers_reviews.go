// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"

	"github.com/tomtom215/yamdb/internal/models"
)

// ReviewRequest creates a review. The author is always the requester.
type ReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

// ReviewPatchRequest partially updates a review.
type ReviewPatchRequest struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score" validate:"omitempty,gte=1,lte=10"`
}

// CommentRequest creates or edits a comment.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// resolveTitle answers 404 unless the title in the path exists.
func (h *Handler) resolveTitle(w http.ResponseWriter, r *http.Request) (int64, bool) {
	titleID, ok := pathID(w, r, "title_id")
	if !ok {
		return 0, false
	}
	exists, err := h.db.TitleExists(r.Context(), titleID)
	if err != nil {
		respondServiceError(w, r, err)
		return 0, false
	}
	if !exists {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Title not found", nil, nil)
		return 0, false
	}
	return titleID, true
}

// resolveReview loads the review in the path, scoped to its title.
func (h *Handler) resolveReview(w http.ResponseWriter, r *http.Request) (*models.Review, bool) {
	titleID, ok := h.resolveTitle(w, r)
	if !ok {
		return nil, false
	}
	reviewID, ok := pathID(w, r, "review_id")
	if !ok {
		return nil, false
	}
	review, err := h.db.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return review, true
}

// resolveComment loads the comment in the path, scoped to its review.
func (h *Handler) resolveComment(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	review, ok := h.resolveReview(w, r)
	if !ok {
		return nil, false
	}
	commentID, ok := pathID(w, r, "comment_id")
	if !ok {
		return nil, false
	}
	comment, err := h.db.GetComment(r.Context(), review.ID, commentID)
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return comment, true
}

// ListReviews handles GET /titles/{title_id}/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := h.resolveTitle(w, r)
	if !ok {
		return
	}
	page, ok := h.page(w, r)
	if !ok {
		return
	}
	reviews, total, err := h.db.ListReviews(r.Context(), titleID, page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, newPaginated(r, page, total, reviews))
}

// CreateReview handles POST /titles/{title_id}/reviews. A second review
// by the same author on the same title is a 409.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := h.resolveTitle(w, r)
	if !ok {
		return
	}
	requester, ok := h.requireAuthenticated(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.db.CreateReview(r.Context(), &models.Review{
		TitleID:  titleID,
		AuthorID: requester.ID,
		Text:     req.Text,
		Score:    req.Score,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, review)
}

// GetReview handles GET /titles/{title_id}/reviews/{review_id}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveReview(w, r)
	if !ok {
		return
	}
	respondData(w, r, http.StatusOK, review)
}

// UpdateReview handles PATCH /titles/{title_id}/reviews/{review_id}.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveReview(w, r)
	if !ok || !h.checkAuthor(w, r, review.AuthorID) {
		return
	}
	var req ReviewPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.db.UpdateReview(r.Context(), review.TitleID, review.ID, models.ReviewPatch{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, updated)
}

// DeleteReview handles DELETE /titles/{title_id}/reviews/{review_id}.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveReview(w, r)
	if !ok || !h.checkAuthor(w, r, review.AuthorID) {
		return
	}
	if err := h.db.DeleteReview(r.Context(), review.TitleID, review.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondNoContent(w)
}

// ListComments handles GET .../reviews/{review_id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveReview(w, r)
	if !ok {
		return
	}
	page, ok := h.page(w, r)
	if !ok {
		return
	}
	comments, total, err := h.db.ListComments(r.Context(), review.ID, page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, newPaginated(r, page, total, comments))
}

// CreateComment handles POST .../reviews/{review_id}/comments.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	review, ok := h.resolveReview(w, r)
	if !ok {
		return
	}
	requester, ok := h.requireAuthenticated(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.db.CreateComment(r.Context(), &models.Comment{
		ReviewID: review.ID,
		AuthorID: requester.ID,
		Text:     req.Text,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, comment)
}

// GetComment handles GET .../comments/{comment_id}.
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.resolveComment(w, r)
	if !ok {
		return
	}
	respondData(w, r, http.StatusOK, comment)
}

// UpdateComment handles PATCH .../comments/{comment_id}.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.resolveComment(w, r)
	if !ok || !h.checkAuthor(w, r, comment.AuthorID) {
		return
	}
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.db.UpdateComment(r.Context(), comment.ReviewID, comment.ID, req.Text)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, updated)
}

// DeleteComment handles DELETE .../comments/{comment_id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.resolveComment(w, r)
	if !ok || !h.checkAuthor(w, r, comment.AuthorID) {
		return
	}
	if err := h.db.DeleteComment(r.Context(), comment.ReviewID, comment.ID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondNoContent(w)
}
