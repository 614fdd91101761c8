// Package newsletter stores newsletter subscriptions keyed by email.
//
// Subscribing twice with the same email updates the existing record in
// place: only the fields present in the second request overwrite.
package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/storefront-gateway/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrEmailRequired = errors.New("missing required parameter: email")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// Fields are the optional attributes of a subscription. A nil field leaves
// the stored value untouched.
type Fields struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Consent   *bool
}

// Record is a stored subscription
type Record struct {
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Consent   bool      `json:"consent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Created is true when the upsert inserted the record
	Created bool `json:"-"`
}

// Store persists subscriptions. Upsert must be atomic and idempotent on key:
// it creates the record when absent and updates it in place otherwise.
type Store interface {
	Upsert(ctx context.Context, key string, fields Fields) (Record, error)
	Close() error
}

// Subscription is a raw subscribe request as submitted by a form or API
type Subscription struct {
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Consent   Consent `json:"consent"`
}

// Consent is the raw consent value. Forms send strings such as "on" or
// "true"; JSON clients may also send a boolean.
type Consent string

func (c *Consent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*c = Consent(strconv.FormatBool(b))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("consent must be a boolean or string: %w", err)
	}
	*c = Consent(s)
	return nil
}

// Observer is told the result of every subscribe attempt
type Observer interface {
	ObserveSubscription(result string)
}

type Service struct {
	store    Store
	observer Observer
}

func NewService(store Store, observer Observer) *Service {
	return &Service{store: store, observer: observer}
}

// Subscribe validates a subscription and upserts it
func (s *Service) Subscribe(ctx context.Context, sub Subscription) (Record, error) {
	key, err := NormalizeEmail(sub.Email)
	if err != nil {
		s.observe("invalid")
		return Record{}, err
	}

	record, err := s.store.Upsert(ctx, key, sub.fields())
	if err != nil {
		s.observe("error")
		logger.Error("Error updating newsletter subscription", zap.String("email", key), zap.Error(err))
		return Record{}, fmt.Errorf("failed to store subscription: %w", err)
	}

	if record.Created {
		s.observe("created")
	} else {
		s.observe("updated")
	}
	return record, nil
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveSubscription(result)
	}
}

// NormalizeEmail validates an address and returns the store key for it
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}

func (sub Subscription) fields() Fields {
	var f Fields
	if v := strings.TrimSpace(sub.FirstName); v != "" {
		f.FirstName = &v
	}
	if v := strings.TrimSpace(sub.LastName); v != "" {
		f.LastName = &v
	}
	if v := strings.TrimSpace(sub.Phone); v != "" {
		f.Phone = &v
	}
	if v := strings.TrimSpace(string(sub.Consent)); v != "" {
		consent := parseConsent(v)
		f.Consent = &consent
	}
	return f
}

func parseConsent(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "yes", "1":
		return true
	}
	return false
}
