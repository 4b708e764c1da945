package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nepal-lottery/lottery-backend/internal/api/handlers"
	"github.com/nepal-lottery/lottery-backend/internal/api/middleware"
	"github.com/nepal-lottery/lottery-backend/internal/cache"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Digits  *handlers.DigitResultHandler
	Results *handlers.ImageResultHandler
	Site    *handlers.SiteHandler
	Auth    *handlers.AuthHandler
	Live    http.Handler
}

// NewRouter lays out the public API, the admin API and the admin page guard.
func NewRouter(h Handlers, authn *middleware.Authenticator, pages *cache.PageCache, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteJSONResponse(w, http.StatusOK, map[string]any{"success": true})
	}).Methods(http.MethodGet)

	// The websocket feed bypasses the page cache.
	r.Handle("/api/live", h.Live).Methods(http.MethodGet)

	public := r.PathPrefix("/api").Subrouter()
	if pages != nil {
		public.Use(pages.Middleware)
	}
	public.HandleFunc("/home", h.Site.Home).Methods(http.MethodGet)
	public.HandleFunc("/digits", h.Digits.List).Methods(http.MethodGet)
	public.HandleFunc("/digits/{date}", h.Digits.GetByDate).Methods(http.MethodGet)
	public.HandleFunc("/results", h.Results.List).Methods(http.MethodGet)
	public.HandleFunc("/results/{id}", h.Results.Get).Methods(http.MethodGet)
	public.HandleFunc("/categories", h.Site.ListCategories).Methods(http.MethodGet)
	public.HandleFunc("/contact", h.Site.SubmitContact).Methods(http.MethodPost)

	// Login and logout must be reachable without a session.
	adminAuth := r.PathPrefix("/api/admin").Subrouter()
	adminAuth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	adminAuth.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(authn.RequireAuth)
	admin.HandleFunc("/session", h.Auth.Session).Methods(http.MethodGet)
	admin.HandleFunc("/dashboard", h.Site.Dashboard).Methods(http.MethodGet)

	admin.HandleFunc("/digit-results", h.Digits.List).Methods(http.MethodGet)
	admin.HandleFunc("/digit-results", h.Digits.Upsert).Methods(http.MethodPost)
	admin.HandleFunc("/digit-results/{id}", h.Digits.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/categories", h.Site.ListCategories).Methods(http.MethodGet)
	admin.HandleFunc("/categories", h.Site.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id}", h.Site.UpdateCategory).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{id}", h.Site.DeleteCategory).Methods(http.MethodDelete)

	admin.HandleFunc("/image-results", h.Results.List).Methods(http.MethodGet)
	admin.HandleFunc("/image-results", h.Results.Create).Methods(http.MethodPost)
	admin.HandleFunc("/image-results/{id}", h.Results.Update).Methods(http.MethodPut)
	admin.HandleFunc("/image-results/{id}", h.Results.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/messages", h.Site.ListMessages).Methods(http.MethodGet)
	admin.HandleFunc("/messages/{id}/read", h.Site.MarkMessageRead).Methods(http.MethodPost)
	admin.HandleFunc("/messages/{id}", h.Site.DeleteMessage).Methods(http.MethodDelete)

	admin.HandleFunc("/settings/youtube", h.Site.GetYoutubeLink).Methods(http.MethodGet)
	admin.HandleFunc("/settings/youtube", h.Site.UpdateYoutubeLink).Methods(http.MethodPut)

	// Admin pages are rendered by the frontend; here they only get the
	// session guard and answer with the session when allowed through.
	r.PathPrefix("/admin").Handler(authn.AdminPages(http.HandlerFunc(h.Auth.Session)))

	return middleware.CORSHandler(allowedOrigins)(r)
}
