package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vrakshhq/vraksh/pkg/jwt"
)

// NewRouter assembles the full HTTP surface: the auth routes, branch and
// item management, the public page lookup, and the health endpoint.
func NewRouter(
	authHandler *AuthHandler,
	branchHandler *BranchHandler,
	issuer *jwt.Issuer,
	health http.Handler,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	requireAuth := jwt.Middleware(issuer)

	if health != nil {
		r.Method(http.MethodGet, "/health", health)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.handleRegister)
		r.Post("/login", authHandler.handleLogin)
		r.Get("/check-username", authHandler.handleCheckUsername)
		r.Post("/send-magic-link", authHandler.handleSendMagicLink)
		r.Get("/verify-magic-link", authHandler.handleVerifyMagicLink)
		r.Get("/auth/{provider}", authHandler.handleOAuthBegin)
		r.Get("/auth/{provider}/callback", authHandler.handleOAuthCallback)
		r.Post("/forgot-password", authHandler.handleForgotPassword)
		r.Post("/reset-password/{resetToken}", authHandler.handleResetPassword)

		r.Get("/branch/username/{username}", branchHandler.handlePublicLookup)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.handleMe)

			r.Get("/branches", branchHandler.handleList)
			r.Post("/branch", branchHandler.handleCreate)
			r.Put("/branch/{branchId}", branchHandler.handleUpdate)
			r.Delete("/branch/{branchId}", branchHandler.handleDelete)
			r.Post("/branch/{branchId}/item", branchHandler.handleAddItem)
			r.Get("/branch/{branchId}/qr", branchHandler.handleQRCode)
			r.Put("/branch/item/{itemId}", branchHandler.handleUpdateItem)
			r.Put("/branch/reorder/{branchId}", branchHandler.handleReorder)
			r.Delete("/branch/{branchId}/{itemId}", branchHandler.handleDeleteItem)
		})
	})

	return r
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
