package handler

import (
	"net/http"

	"github.com/brizzai/storefront-gateway/internal/utils"
)

type loyaltyInfo struct {
	Tier       string  `json:"tier"`
	Points     int     `json:"points"`
	CustomerID *string `json:"customerID"`
}

// HandleLoyaltyInfo returns the loyalty status of a customer. The values are
// fixed until a loyalty backend exists.
//
// GET /loyalty-info?c_customer_id=
func (h *Handler) HandleLoyaltyInfo(w http.ResponseWriter, r *http.Request) {
	info := loyaltyInfo{Tier: "silver", Points: 14275}
	if id := r.URL.Query().Get("c_customer_id"); id != "" {
		info.CustomerID = &id
	}
	utils.WriteJSON(w, http.StatusOK, info)
}
