package handler

import (
	"net/http"
	"strings"

	"github.com/brizzai/storefront-gateway/internal/utils"
)

// HandlePageContent fetches PWA Kit content server side so the storefront
// can embed it without a browser CORS request.
//
// GET /pwa/content?pageID=
func (h *Handler) HandlePageContent(w http.ResponseWriter, r *http.Request) {
	pageID := strings.TrimSpace(r.URL.Query().Get("pageID"))
	if pageID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing pageID")
		return
	}

	result := h.deps.Pages.GetPageContent(r.Context(), h.deps.SiteID, pageID)
	if result.OK {
		utils.WriteHTML(w, http.StatusOK, *result.Payload)
		return
	}
	writeCallError(w, r, "Failed to fetch PWA content", result.Error)
}
