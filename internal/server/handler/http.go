// Package handler provides the storefront HTTP controllers.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/brizzai/storefront-gateway/internal/integrations/pagecontent"
	"github.com/brizzai/storefront-gateway/internal/integrations/userlookup"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/newsletter"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"github.com/brizzai/storefront-gateway/internal/utils"
	"go.uber.org/zap"
)

// UserLookup is the user service as seen by the controllers
type UserLookup interface {
	GetUser(ctx context.Context, userID string) userlookup.Result
}

// PageContent is the page content service as seen by the controllers
type PageContent interface {
	GetPageContent(ctx context.Context, siteID, pageID string) pagecontent.Result
}

// Subscriber stores newsletter subscriptions
type Subscriber interface {
	Subscribe(ctx context.Context, sub newsletter.Subscription) (newsletter.Record, error)
}

// RequestObserver records served requests
type RequestObserver interface {
	ObserveHTTP(route string, status int, elapsed time.Duration)
}

// Deps are the collaborators of the controllers
type Deps struct {
	SiteID      string
	Users       UserLookup
	Pages       PageContent
	Newsletter  Subscriber
	Observer    RequestObserver
	Metrics     http.Handler
	OpenAPIJSON []byte
}

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	deps Deps
}

// NewHandler creates a new HTTP handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// CreateHTTPHandler registers every storefront route on a new mux
func (h *Handler) CreateHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /pwa/content", h.instrument("pwa_content", h.HandlePageContent))
	mux.Handle("GET /users/{userID}", h.instrument("user", h.HandleUser))
	mux.Handle("GET /user", h.instrument("user_show", h.HandleUserShow))
	mux.Handle("POST /newsletter/subscribe", h.instrument("newsletter_subscribe", h.HandleSubscribe))
	mux.Handle("GET /loyalty-info", h.instrument("loyalty_info", h.HandleLoyaltyInfo))
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	if h.deps.Metrics != nil {
		mux.Handle("GET /metrics", h.deps.Metrics)
	}
	if len(h.deps.OpenAPIJSON) > 0 {
		mux.HandleFunc("GET /openapi.json", h.HandleOpenAPI)
	}

	logger.Info("Registered storefront routes")
	return mux
}

// HandleHealth answers liveness probes
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleOpenAPI serves the OpenAPI document
func (h *Handler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(h.deps.OpenAPIJSON); err != nil {
		logger.Warn("Failed to write OpenAPI document", zap.Error(err))
	}
}

// writeCallError logs the detailed failure and answers with a generic
// envelope that does not reveal the remote endpoint.
func writeCallError(w http.ResponseWriter, r *http.Request, publicMessage string, err *requester.CallError) {
	if err == nil {
		err = &requester.CallError{Kind: requester.KindInternal, Message: "missing call error"}
	}
	status := err.HTTPStatus()
	logger.Error("Service call failed",
		zap.String("route", r.URL.Path),
		zap.String("kind", string(err.Kind)),
		zap.Int("status", status),
		zap.String("error", err.Message),
	)

	message := publicMessage
	if err.Kind == requester.KindConfiguration && status == http.StatusBadRequest {
		message = err.Message
	}
	utils.WriteError(w, status, message)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic while serving request", zap.String("route", route), zap.Any("panic", p))
				rec.status = http.StatusInternalServerError
				utils.WriteError(rec, http.StatusInternalServerError, "Internal Server Error")
			}
			elapsed := time.Since(start)
			logger.Debug("Served request",
				zap.String("route", route),
				zap.String("method", r.Method),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", elapsed),
			)
			if h.deps.Observer != nil {
				h.deps.Observer.ObserveHTTP(route, rec.status, elapsed)
			}
		}()
		next(rec, r)
	})
}
