// Package imagemeta extracts embedded metadata (EXIF GPS tag, timestamp,
// camera model) from an image. It is the local perception path: it runs on
// every image, including when the vision collaborator is unavailable.
package imagemeta

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/geolens/geolens/internal/domain"
)

// Meta holds the metadata recovered from an image, all fields optional.
type Meta struct {
	Lat       *float64
	Lon       *float64
	Timestamp string
	Camera    string
}

// ValidateImage rejects inputs that are not a decodable image. This is the
// only fatal validation in the pipeline and runs before Perception.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return domain.ErrUnreadableImage
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: detected content type %s", domain.ErrUnreadableImage, contentType)
	}
	return nil
}

// Extract reads EXIF metadata from image bytes. Images without EXIF blocks
// return an empty Meta and no error; metadata absence is not a failure.
func Extract(data []byte) (*Meta, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return &Meta{}, nil
	}

	m := &Meta{}
	if lat, lon, err := x.LatLong(); err == nil {
		m.Lat = &lat
		m.Lon = &lon
	}
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if s, err := tag.StringVal(); err == nil {
			m.Timestamp = s
		}
	} else if tag, err := x.Get(exif.DateTime); err == nil {
		if s, err := tag.StringVal(); err == nil {
			m.Timestamp = s
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			m.Camera = s
		}
	}
	return m, nil
}

// Clues converts extracted metadata into metadata clues, in priority order
// (GPS first: it is the strongest signal perception can produce).
func (m *Meta) Clues() []domain.Clue {
	var clues []domain.Clue
	if m.Lat != nil && m.Lon != nil {
		value := fmt.Sprintf("%.6f,%.6f", *m.Lat, *m.Lon)
		clues = append(clues, domain.NewMetadataClue(domain.MetaKeyGPS, value, "exif"))
	}
	if m.Timestamp != "" {
		clues = append(clues, domain.NewMetadataClue(domain.MetaKeyTimestamp, m.Timestamp, "exif"))
	}
	if m.Camera != "" {
		clues = append(clues, domain.NewMetadataClue(domain.MetaKeyCamera, m.Camera, "exif"))
	}
	return clues
}
