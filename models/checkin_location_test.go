package models

import (
	"strings"
	"testing"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
)

func testService() *CheckinService {
	return NewCheckinService(config.CheckinRules{
		MinLatitude:     30,
		MaxLatitude:     31,
		MinLongitude:    120,
		MaxLongitude:    121,
		MaxReissueDays:  3,
		MaxReissueCount: 1,
	})
}

func TestValidateCheckinLocation_InsideBounds(t *testing.T) {
	s := testService()
	if err := s.ValidateCheckinLocation(30.5, 120.5); err != nil {
		t.Fatalf("expected valid location, got %v", err)
	}
}

func TestValidateCheckinLocation_LatitudeOutOfRange(t *testing.T) {
	s := testService()
	err := s.ValidateCheckinLocation(91, 0)
	if err == nil {
		t.Fatal("expected error for latitude 91")
	}
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("expected Validation kind, got %s", utils.KindOf(err))
	}
}

func TestValidateCheckinLocation_LongitudeOutOfRange(t *testing.T) {
	s := testService()
	if err := s.ValidateCheckinLocation(30.5, 181); err == nil {
		t.Fatal("expected error for longitude 181")
	}
	if err := s.ValidateCheckinLocation(30.5, -180.01); err == nil {
		t.Fatal("expected error for longitude -180.01")
	}
}

func TestValidateCheckinLocation_OutsideGeofenceNamesBounds(t *testing.T) {
	s := testService()
	err := s.ValidateCheckinLocation(29.9, 120.5)
	if err == nil {
		t.Fatal("expected error outside geofence")
	}
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("expected Validation kind, got %s", utils.KindOf(err))
	}
	msg := err.Error()
	for _, bound := range []string{"30", "31", "120", "121"} {
		if !strings.Contains(msg, bound) {
			t.Fatalf("error message should name configured bound %s: %q", bound, msg)
		}
	}
}

func TestValidateCheckinLocation_EdgeOfGeofence(t *testing.T) {
	s := testService()
	// inclusive bounds
	if err := s.ValidateCheckinLocation(30, 120); err != nil {
		t.Fatalf("expected min corner to be valid, got %v", err)
	}
	if err := s.ValidateCheckinLocation(31, 121); err != nil {
		t.Fatalf("expected max corner to be valid, got %v", err)
	}
}
