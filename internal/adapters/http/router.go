package http

import (
	"context"
	"io"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/brandhub/internal/application"
)

// UploadSource serves stored uploads back by their public path.
type UploadSource interface {
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}

// Handler is the HTTP adapter entrypoint for the account and catalog use-cases.
type Handler struct {
	service        *application.Service
	uploads        UploadSource
	trustedProxies []netip.Prefix
}

type HandlerOption func(*Handler)

// WithTrustedProxies lets login history record the X-Forwarded-For origin
// for requests arriving through one of proxies.
func WithTrustedProxies(proxies []netip.Prefix) HandlerOption {
	return func(h *Handler) {
		h.trustedProxies = append([]netip.Prefix(nil), proxies...)
	}
}

// NewHandler binds the routes to service. uploads may be nil when files are
// served by something other than this process.
func NewHandler(service *application.Service, uploads UploadSource, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, uploads: uploads}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)

	r.Get("/healthz", handler.healthz)
	if handler.uploads != nil {
		r.Get("/uploads/*", handler.serveUpload)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/logout", handler.logout)
		r.Post("/refresh", handler.refresh)
		r.Post("/forgot-password", handler.forgotPassword)
		r.Post("/reset-password", handler.resetPassword)
		r.Post("/change-password", handler.changePassword)
		r.Post("/verify-otp", handler.verifyOTP)
		r.Post("/resend-verification", handler.resendVerification)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/check-session", handler.checkSession)
			r.Get("/login-history", handler.loginHistory)
			r.Get("/users", handler.listUsers)
		})
	})

	r.Route("/api/brands", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handler.optionalAuthMiddleware)
			r.Get("/", handler.listBrands)
			r.Get("/category/{category}", handler.listBrandsByCategory)
			r.Get("/owner/{ownerID}", handler.getBrandByOwner)
			r.Get("/{id}", handler.getBrand)
		})
		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/", handler.createBrand)
			r.Put("/{id}", handler.updateBrand)
			r.Post("/{id}/logo", handler.uploadBrandLogo)
			r.Patch("/{id}/toggle-status", handler.toggleBrandStatus)
			r.Delete("/{id}", handler.deleteBrand)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", handler.listProducts)
		r.Get("/{id}", handler.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/", handler.createProduct)
			r.Put("/{id}", handler.updateProduct)
			r.Delete("/{id}", handler.deleteProduct)
			r.Post("/{id}/record-sale", handler.recordSale)
		})
	})

	return r
}
