package http

import (
	"net/http"

	"budget/internal/services"
)

func categoryInput(req categoryRequest) services.CategoryInput {
	return services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.services.Categories.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryListResponse(categories))
}

func (s *Server) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.services.Categories.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryListResponse(categories))
}

func (s *Server) handleGetCategoryByName(w http.ResponseWriter, r *http.Request) {
	category, err := s.services.Categories.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryResponse(*category))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.services.Categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryResponse(*category))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.services.Categories.Create(r.Context(), categoryInput(req))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCategoryResponse(*category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := s.services.Categories.Update(r.Context(), r.PathValue("id"), categoryInput(req))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryResponse(*category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
