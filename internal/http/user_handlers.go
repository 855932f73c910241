package http

import (
	"net/http"

	"budget/internal/services"
)

func registerInput(req registerRequest) services.RegisterInput {
	return services.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := s.services.Users.List(r.Context(), parsePage(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	respondJSON(w, http.StatusOK, userListResponse{Users: out, Total: total})
}

func (s *Server) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newUserResponse(*requestUser(r)))
}

// handleGetUser serves a single account. Non-admin callers may only read
// their own.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	caller := requestUser(r)
	if caller.ID != id && !requestAuthorities(r).Has(capManageUsers) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	user, err := s.services.Users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(*user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	caller := requestUser(r)
	if caller.ID != id && !requestAuthorities(r).Has(capManageUsers) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.services.Users.UpdateProfile(r.Context(), id, services.UpdateProfileInput{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(*user))
}

func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, false)
}

func (s *Server) handleReactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, true)
}

func (s *Server) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	user, err := s.services.Users.SetActive(r.Context(), r.PathValue("id"), active)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(*user))
}
