package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/auth"
	"github.com/vpikus/vdm-ai-dubbing/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  loginUserDTO `json:"user"`
}

type loginUserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginHandler authenticates credentials and issues a session token
// (spec.md §6.1 POST /auth/login).
func LoginHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request payload", err)
			return
		}

		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			log.Printf("❌  Validation failed: %s", errsJSON)
			return
		}

		token, user, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, LoginResponse{
			Token: token,
			User: loginUserDTO{
				ID:       user.ID.String(),
				Username: user.Username,
				Role:     string(user.Role),
			},
		})
		log.Printf("✅  %s logged in", user.Username)
	}
}
