package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/brizzai/storefront-gateway/internal/newsletter"
	"github.com/brizzai/storefront-gateway/internal/utils"
)

const maxSubscribeBody = 1 << 20

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Email   string `json:"email,omitempty"`
}

// HandleSubscribe creates or updates a newsletter subscription. It accepts
// a JSON body or form fields, either plain (email) or prefixed (c_email).
//
// POST /newsletter/subscribe
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := readSubscription(w, r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, subscribeResponse{Error: "Invalid request body"})
		return
	}

	record, err := h.deps.Newsletter.Subscribe(r.Context(), sub)
	switch {
	case errors.Is(err, newsletter.ErrEmailRequired):
		utils.WriteJSON(w, http.StatusBadRequest, subscribeResponse{Error: "Missing required parameter: email"})
		return
	case errors.Is(err, newsletter.ErrInvalidEmail):
		utils.WriteJSON(w, http.StatusBadRequest, subscribeResponse{Error: "Please enter a valid email address"})
		return
	case err != nil:
		utils.WriteJSON(w, http.StatusInternalServerError, subscribeResponse{Error: "Internal Server Error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, subscribeResponse{
		Success: true,
		Message: "Newsletter subscription updated successfully.",
		Email:   record.Email,
	})
}

func readSubscription(w http.ResponseWriter, r *http.Request) (newsletter.Subscription, error) {
	var sub newsletter.Subscription
	r.Body = http.MaxBytesReader(w, r.Body, maxSubscribeBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			return sub, err
		}
		return sub, nil
	}

	if err := r.ParseForm(); err != nil {
		return sub, err
	}
	value := func(name string) string {
		if v := r.Form.Get(name); v != "" {
			return v
		}
		return r.Form.Get("c_" + name)
	}
	sub.Email = value("email")
	sub.FirstName = value("firstName")
	sub.LastName = value("lastName")
	sub.Phone = value("phone")
	sub.Consent = newsletter.Consent(value("consent"))
	return sub, nil
}
