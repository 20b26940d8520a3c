package imagemeta

import (
	"errors"
	"testing"

	"github.com/geolens/geolens/internal/domain"
)

func TestValidateImageAcceptsPNG(t *testing.T) {
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	if err := ValidateImage(data); err != nil {
		t.Fatalf("expected valid image, got %v", err)
	}
}

func TestValidateImageRejectsText(t *testing.T) {
	err := ValidateImage([]byte("hello, world"))
	if !errors.Is(err, domain.ErrUnreadableImage) {
		t.Fatalf("expected unreadable image error, got %v", err)
	}
}

func TestValidateImageRejectsEmpty(t *testing.T) {
	if err := ValidateImage(nil); !errors.Is(err, domain.ErrUnreadableImage) {
		t.Fatalf("expected unreadable image error, got %v", err)
	}
}

func TestExtractWithoutEXIFIsNotAnError(t *testing.T) {
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	meta, err := Extract(data)
	if err != nil {
		t.Fatalf("metadata absence must not be an error, got %v", err)
	}
	if len(meta.Clues()) != 0 {
		t.Fatalf("expected no clues, got %d", len(meta.Clues()))
	}
}

func TestCluesOrderedGPSFirst(t *testing.T) {
	lat, lon := 48.8584, 2.2945
	meta := &Meta{Lat: &lat, Lon: &lon, Timestamp: "2024:05:01 10:00:00", Camera: "NIKON D850"}

	clues := meta.Clues()
	if len(clues) != 3 {
		t.Fatalf("expected 3 clues, got %d", len(clues))
	}
	if clues[0].Key != domain.MetaKeyGPS {
		t.Fatalf("expected GPS clue first, got %s", clues[0].Key)
	}
	if clues[0].Value != "48.858400,2.294500" {
		t.Fatalf("unexpected GPS value %q", clues[0].Value)
	}
	if clues[1].Key != domain.MetaKeyTimestamp || clues[2].Key != domain.MetaKeyCamera {
		t.Fatalf("unexpected clue order: %s, %s", clues[1].Key, clues[2].Key)
	}
	for _, c := range clues {
		if c.Source != "exif" {
			t.Fatalf("expected exif source, got %q", c.Source)
		}
		if c.Confidence != 1.0 {
			t.Fatalf("metadata clues carry confidence 1.0, got %f", c.Confidence)
		}
	}
}
