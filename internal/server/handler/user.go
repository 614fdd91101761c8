package handler

import (
	"net/http"
	"strings"

	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/utils"
	"go.uber.org/zap"
)

const missingUserIDMessage = "Please provide a userID in the query string (e.g., ?userID=2)"

// HandleUser returns the user named in the path.
//
// GET /users/{userID}
func (h *Handler) HandleUser(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, r.PathValue("userID"))
}

// HandleUserShow is the query string variant used by storefront pages.
//
// GET /user?userID=
func (h *Handler) HandleUserShow(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userID"))
	if userID == "" {
		utils.WriteError(w, http.StatusBadRequest, missingUserIDMessage)
		return
	}
	h.writeUser(w, r, userID)
}

func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, userID string) {
	result := h.deps.Users.GetUser(r.Context(), userID)
	if !result.OK {
		writeCallError(w, r, "Failed to retrieve user or user not found.", result.Error)
		return
	}

	user := result.Payload
	logger.Info("Successfully fetched user",
		zap.Int("id", user.ID),
		zap.String("first_name", user.FirstName),
		zap.String("last_name", user.LastName),
	)
	utils.WriteJSON(w, http.StatusOK, user)
}
