package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wedlii/wedbot/internal/assist"
	"github.com/wedlii/wedbot/internal/vendors"
)

type vendorQueryRequest struct {
	Category  string   `json:"category"`
	City      string   `json:"city"`
	Budget    float64  `json:"budget"`
	StyleTags []string `json:"style_tags"`
	Limit     int      `json:"limit"`
}

type shortlistRequest struct {
	VendorID string `json:"vendor_id"`
}

func (q vendorQueryRequest) query() vendors.Query {
	return vendors.Query{
		Category:  q.Category,
		City:      q.City,
		MaxBudget: q.Budget,
		StyleTags: q.StyleTags,
		Limit:     q.Limit,
	}
}

func (q vendorQueryRequest) validate() string {
	if strings.TrimSpace(q.Category) == "" || strings.TrimSpace(q.City) == "" {
		return "category and city are required"
	}
	if q.Budget < 0 {
		return "budget must not be negative"
	}
	return ""
}

func (s *Server) handleRecommendVendors(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	req := vendorQueryRequest{
		Category: qs.Get("category"),
		City:     qs.Get("city"),
	}
	if raw := strings.TrimSpace(qs.Get("budget")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "budget must be a number")
			return
		}
		req.Budget = v
	}
	if raw := strings.TrimSpace(qs.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		req.Limit = v
	}
	if raw := strings.TrimSpace(qs.Get("style_tags")); raw != "" {
		req.StyleTags = strings.Split(raw, ",")
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	found, err := s.deps.Vendors.Recommend(r.Context(), req.query())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vendors": found})
}

func (s *Server) handleCompareVendors(w http.ResponseWriter, r *http.Request) {
	var req vendorQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	found, err := s.deps.Vendors.Recommend(r.Context(), req.query())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	summary, err := s.deps.Comparer.Compare(r.Context(), found, req.Budget, req.Category)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"vendors":    found,
		"comparison": summary,
	})
}

func (s *Server) handleGetShortlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Vendors.Shortlist(r.Context(), userFrom(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vendors": list})
}

func (s *Server) handleAddToShortlist(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.VendorID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "vendor_id is required")
		return
	}
	if err := s.deps.Vendors.AddToShortlist(r.Context(), userFrom(r), req.VendorID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"status": "ok", "vendor_id": req.VendorID})
}

func (s *Server) handleRemoveFromShortlist(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Vendors.RemoveFromShortlist(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req assist.ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	text, err := s.deps.Content.Write(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"content": text})
}
