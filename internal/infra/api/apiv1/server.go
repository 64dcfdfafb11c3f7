// Package apiv1 serves the read-only catalogue under /api/v1.
package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/infra/logging"
	"meal-review-bot/internal/usecase"
)

type Restaurant struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Dish struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Image        *string `json:"image,omitempty"`
}

type Review struct {
	ID       int64  `json:"id"`
	Reviewer int64  `json:"reviewer"`
	Name     string `json:"reviewer_name"`
	Score    uint8  `json:"score"`
	Details  string `json:"details"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

type Server struct {
	catalogue usecase.CatalogueUseCase
	log       *zerolog.Logger
}

func NewServer(catalogue usecase.CatalogueUseCase, logger *zerolog.Logger) *Server {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Server{catalogue: catalogue, log: logger}
}

// RegisterAPIV1 mounts the routes with absolute paths, so r is the root router.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/restaurants", s.listRestaurants)
		r.Get("/restaurants/{id}", s.listDishes)
		r.Get("/dishes/{id}", s.listReviews)
	})
}

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	rs, err := s.catalogue.ListRestaurants(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]Restaurant, 0, len(rs))
	for _, x := range rs {
		out = append(out, Restaurant{ID: x.ID, Name: x.Name, Address: x.Address})
	}
	writeJSON(w, http.StatusOK, itemsResponse[Restaurant]{Items: out})
}

// listDishes answers with the dishes of one restaurant.
func (s *Server) listDishes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.catalogue.GetRestaurant(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	ds, err := s.catalogue.ListDishes(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]Dish, 0, len(ds))
	for _, d := range ds {
		out = append(out, Dish{ID: d.ID, RestaurantID: d.RestaurantID, Name: d.Name, Image: d.ImageRef})
	}
	writeJSON(w, http.StatusOK, itemsResponse[Dish]{Items: out})
}

// listReviews answers with the reviews of one dish.
func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.catalogue.GetDish(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	rvs, err := s.catalogue.ListReviews(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]Review, 0, len(rvs))
	for _, rv := range rvs {
		out = append(out, toReview(rv))
	}
	writeJSON(w, http.StatusOK, itemsResponse[Review]{Items: out})
}

func toReview(rv *model.Review) Review {
	return Review{ID: rv.ID, Reviewer: rv.Reviewer.ID, Name: rv.Reviewer.Name, Score: rv.Score, Details: rv.Details}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid id " + strconv.Quote(raw)})
		return 0, false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "not found"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("catalogue query failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
