package geo

import (
	"math"
	"testing"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km.
	d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 330_000 || d > 360_000 {
		t.Fatalf("expected ~344km, got %.0fm", d)
	}
}

func TestHaversineZero(t *testing.T) {
	d := Haversine(35.6762, 139.6503, 35.6762, 139.6503)
	if d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	b := Haversine(34.0522, -118.2437, 40.7128, -74.0060)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestBBoxAroundContainsCenter(t *testing.T) {
	south, west, north, east := BBoxAround(48.8584, 2.2945, 1000)
	if south >= 48.8584 || north <= 48.8584 {
		t.Fatalf("latitude band [%f, %f] does not contain center", south, north)
	}
	if west >= 2.2945 || east <= 2.2945 {
		t.Fatalf("longitude band [%f, %f] does not contain center", west, east)
	}
}

func TestBBoxAroundClampsPoles(t *testing.T) {
	south, _, north, _ := BBoxAround(89.999, 0, 100_000)
	if north > 90 {
		t.Fatalf("north %f exceeds pole", north)
	}
	if south > north {
		t.Fatalf("south %f above north %f", south, north)
	}
}
