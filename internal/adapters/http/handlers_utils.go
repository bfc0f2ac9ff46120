package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

const (
	maxJSONBodyBytes      int64 = 1 << 20
	maxMultipartBodyBytes int64 = 32 << 20
	multipartMemoryBytes  int64 = 8 << 20
)

var errInvalidBody = errors.New("invalid request body")

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func parseIntDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// clientIP is the peer address, or the nearest X-Forwarded-For hop that is
// not a trusted proxy when the peer itself is trusted.
func (h *Handler) clientIP(r *http.Request) string {
	ip := remoteHost(r.RemoteAddr)
	if !h.trustedProxy(ip) {
		return ip
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !h.trustedProxy(hop) {
			return hop
		}
		ip = hop
	}
	return ip
}

func (h *Handler) trustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range h.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(remoteAddr))
	if err != nil {
		return strings.TrimSpace(remoteAddr)
	}
	return host
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return id, nil
}

// catalogPayload is a catalog write body plus any files that came with it.
type catalogPayload struct {
	body    []byte
	uploads []ports.FileUpload
	form    *multipart.Form
}

// close releases the open upload bodies and any temp files the multipart
// reader spilled to disk.
func (p *catalogPayload) close() {
	for _, u := range p.uploads {
		if c, ok := u.Body.(io.Closer); ok {
			_ = c.Close()
		}
	}
	if p.form != nil {
		_ = p.form.RemoveAll()
	}
}

// readCatalogPayload accepts either a JSON body or a multipart form. Form
// values are folded into one JSON object: a single value becomes a string
// member and a repeated one a string array. Only the named file fields are
// picked up, first file per field.
func readCatalogPayload(w http.ResponseWriter, r *http.Request, fileFields []domain.UploadField) (*catalogPayload, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, errInvalidBody)
		}
		if int64(len(raw)) > maxJSONBodyBytes {
			return nil, fmt.Errorf("%w: request body too large", domain.ErrValidation)
		}
		return &catalogPayload{body: raw}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBodyBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form", domain.ErrValidation)
	}
	payload := &catalogPayload{form: r.MultipartForm}
	body, err := foldFormValues(r.MultipartForm.Value)
	if err != nil {
		payload.close()
		return nil, err
	}
	payload.body = body

	for _, field := range fileFields {
		headers := r.MultipartForm.File[string(field)]
		if len(headers) == 0 {
			continue
		}
		upload, err := openFormFile(field, headers[0])
		if err != nil {
			payload.close()
			return nil, err
		}
		payload.uploads = append(payload.uploads, upload)
	}
	return payload, nil
}

func foldFormValues(values map[string][]string) ([]byte, error) {
	doc := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			doc[key] = vals[0]
		default:
			doc[key] = vals
		}
	}
	return json.Marshal(doc)
}

func openFormFile(field domain.UploadField, header *multipart.FileHeader) (ports.FileUpload, error) {
	file, err := header.Open()
	if err != nil {
		return ports.FileUpload{}, fmt.Errorf("open upload %s: %w", field, err)
	}
	return ports.FileUpload{
		Field:        string(field),
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	}, nil
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, msg, err)
	writeError(w, status, msg)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	msg := validationMessage(err)
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, msg, err)
	writeError(w, http.StatusBadRequest, msg)
}

func writeMissingBearerError(ctx context.Context, w http.ResponseWriter, operation string) {
	msg := "Not authorized, no token"
	logHTTPOperationError(ctx, operation, http.StatusUnauthorized, msg, nil)
	writeError(w, http.StatusUnauthorized, msg)
}
