package v1handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"phishguard/pkg/domain"
	"phishguard/pkg/serrors"
	"strings"

	"github.com/go-faster/jx"
)

const (
	// maxJSONBodyBytes caps the URL scan request body.
	maxJSONBodyBytes = 64 << 10
	// multipartOverhead leaves room for boundaries and part headers around
	// the uploaded image.
	multipartOverhead = 1 << 20
	// ImageField is the multipart field carrying the QR image.
	ImageField = "image"
)

// AcceptedImageTypes are the sniffed content types accepted for QR uploads.
var AcceptedImageTypes = map[string]struct{}{ //nolint: gochecknoglobals
	"image/png":  {},
	"image/jpeg": {},
}

// ScanURL classifies a typed URL. A blank url is a client error; any other
// string is classified and an INVALID verdict is a regular 200 answer.
func (h *Handler) ScanURL(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		h.WriteError(w, r, readError(err, maxJSONBodyBytes))

		return
	}

	var req ScanURLRequest
	if err := req.Decode(jx.DecodeBytes(body)); err != nil {
		h.WriteError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.WriteError(w, r, serrors.With(serrors.ErrBadRequest, "url is required"))

		return
	}

	verdict := h.deps.Classifier.Classify(r.Context(), domain.NewTextRequest(req.URL))
	writeJSON(r.Context(), w, http.StatusOK, encodeVerdict(verdict))
}

// ScanQR classifies the URL encoded in an uploaded PNG or JPEG image.
func (h *Handler) ScanQR(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(w, r)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	verdict := h.deps.Classifier.Classify(r.Context(), domain.NewImageRequest(image))
	writeJSON(r.Context(), w, http.StatusOK, encodeVerdict(verdict))
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := h.options.MaxImageBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	f, _, err := r.FormFile(ImageField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return nil, serrors.With(serrors.ErrBadRequest, "%s is required", ImageField)
	case err != nil:
		return nil, readError(err, limit)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, readError(err, limit)
	}
	if int64(len(data)) > limit {
		return nil, serrors.With(serrors.ErrBadRequest, "image exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "image is empty")
	}

	if ct := http.DetectContentType(data); !acceptedImage(ct) {
		return nil, serrors.With(serrors.ErrBadRequest, "unsupported image type %q, expected PNG or JPEG", ct)
	}

	return data, nil
}

func acceptedImage(contentType string) bool {
	_, ok := AcceptedImageTypes[contentType]

	return ok
}

func readError(err error, limit int64) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return serrors.Wrap(serrors.ErrBadRequest, err, "request body exceeds %d bytes", limit)
	}

	return serrors.Wrap(serrors.ErrBadRequest, fmt.Errorf("read request: %w", err), "malformed request body")
}
