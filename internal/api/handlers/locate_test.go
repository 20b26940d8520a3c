package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/domain"
)

type stubLocator struct {
	state *domain.RunState
	err   error

	gotRef   string
	gotImage []byte
}

func (s *stubLocator) Locate(_ context.Context, imageRef string, image []byte) (*domain.RunState, error) {
	s.gotRef = imageRef
	s.gotImage = image
	if s.err != nil {
		return nil, s.err
	}
	return s.state, nil
}

func finishedState() *domain.RunState {
	state := domain.NewRunState("photo.jpg")
	state.Phase = domain.PhaseDone
	state.Prediction = &domain.Prediction{Name: "Eiffel Tower", Lat: 48.8584, Lon: 2.2945, Confidence: 0.92, Converged: true}
	return state
}

func TestLocateJSONBody(t *testing.T) {
	locator := &stubLocator{state: finishedState()}
	h := NewLocateHandler(locator, nil, zap.NewNop())

	body, _ := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte("image bytes")),
		"image_ref":    "photo.jpg",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/locate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Locate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if locator.gotRef != "photo.jpg" {
		t.Fatalf("expected image_ref forwarded, got %q", locator.gotRef)
	}
	if string(locator.gotImage) != "image bytes" {
		t.Fatalf("expected decoded image bytes, got %q", locator.gotImage)
	}

	var resp domain.RunState
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a run document: %v", err)
	}
	if resp.Prediction == nil || resp.Prediction.Name != "Eiffel Tower" {
		t.Fatalf("unexpected prediction %+v", resp.Prediction)
	}
}

func TestLocateMultipartBody(t *testing.T) {
	locator := &stubLocator{state: finishedState()}
	h := NewLocateHandler(locator, nil, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "street.png")
	_, _ = fw.Write([]byte("png bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/locate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Locate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if locator.gotRef != "street.png" {
		t.Fatalf("expected filename as ref, got %q", locator.gotRef)
	}
}

func TestLocateUnreadableImage(t *testing.T) {
	locator := &stubLocator{err: domain.ErrUnreadableImage}
	h := NewLocateHandler(locator, nil, zap.NewNop())

	body, _ := json.Marshal(map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte("not an image")),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/locate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Locate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLocateMissingImage(t *testing.T) {
	h := NewLocateHandler(&stubLocator{}, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/locate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Locate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
