package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyTokenRaw  ctxKey = "token_raw"
	ctxKeyActor     ctxKey = "actor"
	ctxKeyTrace     ctxKey = "trace"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 64
)

// requestIDMiddleware keeps a caller supplied id only when it is short and
// plain enough to log verbatim.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

// requestTrace is filled in by inner handlers and read back by the access log.
type requestTrace struct {
	accountID uuid.UUID
}

type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rec *responseRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.written += n
	return n, err
}

// accessLogMiddleware writes one log line per request. A panic below it is
// answered with a 500 unless the response had already started.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		trace := &requestTrace{}
		rec := &responseRecorder{ResponseWriter: w}
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyTrace, trace))

		defer func() {
			if p := recover(); p != nil {
				httpLogger().ErrorContext(r.Context(), "panic recovered",
					"operation", "http_panic_recovery",
					"outcome", "failure",
					"request_id", requestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", p,
				)
				if rec.status == 0 {
					writeError(rec, http.StatusInternalServerError, "Internal Server Error")
				}
			}
			logRequest(r, rec, time.Since(start), trace)
		}()
		next.ServeHTTP(rec, r)
	})
}

func logRequest(r *http.Request, rec *responseRecorder, elapsed time.Duration, trace *requestTrace) {
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	outcome := "success"
	if status >= 400 {
		outcome = "failure"
	}
	fields := []any{
		"operation", "http_request",
		"outcome", outcome,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"bytes", rec.written,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestIDFromContext(r.Context()),
	}
	if trace.accountID != uuid.Nil {
		fields = append(fields, "account_id", trace.accountID.String())
	}
	httpLogger().Log(r.Context(), levelForStatus(status), "http request completed", fields...)
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// authMiddleware rejects requests without a valid bearer access token.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeMissingBearerError(r.Context(), w, "authenticate")
			return
		}
		actor, err := h.service.Authenticate(r.Context(), raw)
		if err != nil {
			writeMappedError(r.Context(), w, "authenticate", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithActor(r.Context(), raw, actor)))
	})
}

// optionalAuthMiddleware attaches the actor when a valid bearer token is
// present. Anything else is served as an anonymous reader.
func (h *Handler) optionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := h.service.Authenticate(r.Context(), raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithActor(r.Context(), raw, actor)))
	})
}

func contextWithActor(ctx context.Context, token string, actor domain.Actor) context.Context {
	if trace, ok := ctx.Value(ctxKeyTrace).(*requestTrace); ok {
		trace.accountID = actor.AccountID
	}
	ctx = context.WithValue(ctx, ctxKeyTokenRaw, token)
	ctx = context.WithValue(ctx, ctxKeyActor, actor)
	return ctx
}

// actorFromContext returns the zero Actor for anonymous requests.
func actorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(ctxKeyActor).(domain.Actor)
	return actor
}

func requestIDFromContext(ctx context.Context) string {
	v := ctx.Value(ctxKeyRequestID)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func bearerTokenFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errors.New("missing bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest, "Invalid or expired verification code"
	case errors.Is(err, domain.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "Email already verified"
	case errors.Is(err, domain.ErrEmailDeliveryFailed):
		return http.StatusBadGateway, "Failed to send email"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, please try again later"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// validationMessage strips the sentinel text so clients only see the field
// problems.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		return msg[idx+len(prefix):]
	}
	return msg
}
