package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/domain"
)

// maxImageBytes caps uploads at 20 MiB.
const maxImageBytes = 20 << 20

// Locator runs the full geolocation pipeline for one image.
type Locator interface {
	Locate(ctx context.Context, imageRef string, image []byte) (*domain.RunState, error)
}

// RunSaver persists finished runs. Optional.
type RunSaver interface {
	Save(ctx context.Context, state *domain.RunState) error
}

type LocateHandler struct {
	locator Locator
	runs    RunSaver
	logger  *zap.Logger
}

func NewLocateHandler(locator Locator, runs RunSaver, logger *zap.Logger) *LocateHandler {
	return &LocateHandler{locator: locator, runs: runs, logger: logger}
}

type locateJSONRequest struct {
	ImageBase64 string `json:"image_base64"`
	ImageRef    string `json:"image_ref,omitempty"`
}

// Locate accepts either a multipart form with an "image" file field or a
// JSON body with base64 image bytes, runs the pipeline, and returns the
// full run document.
func (h *LocateHandler) Locate(w http.ResponseWriter, r *http.Request) {
	image, imageRef, ok := h.readImage(w, r)
	if !ok {
		return
	}

	state, err := h.locator.Locate(r.Context(), imageRef, image)
	if err != nil {
		if errors.Is(err, domain.ErrUnreadableImage) {
			writeError(w, http.StatusUnprocessableEntity, "unreadable image")
			return
		}
		h.logger.Error("locate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "locate failed")
		return
	}

	if h.runs != nil {
		if err := h.runs.Save(r.Context(), state); err != nil {
			h.logger.Warn("failed to persist run",
				zap.String("run_id", state.ID.String()),
				zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, state)
}

func (h *LocateHandler) readImage(w http.ResponseWriter, r *http.Request) (image []byte, imageRef string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, "", false
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "image file field is required")
			return nil, "", false
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read image")
			return nil, "", false
		}
		imageRef = r.FormValue("image_ref")
		if imageRef == "" {
			imageRef = header.Filename
		}
		return data, imageRef, true
	}

	var req locateJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, "", false
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "image_base64 is required")
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_base64 is not valid base64")
		return nil, "", false
	}
	return data, req.ImageRef, true
}
