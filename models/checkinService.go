package models

import (
	"fmt"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
)

// CheckinService owns every admission-controlled check-in operation. The
// rules are fixed at construction; DB and cache come from the shared config
// clients so the service itself stays stateless per call.
type CheckinService struct {
	rules config.CheckinRules
}

func NewCheckinService(rules config.CheckinRules) *CheckinService {
	return &CheckinService{rules: rules}
}

func (s *CheckinService) Rules() config.CheckinRules {
	return s.rules
}

// ValidateCheckinLocation checks the coordinate pair against the valid
// lat/lon range and then against the configured geofence. No side effects.
func (s *CheckinService) ValidateCheckinLocation(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return utils.NewValidationError("latitude must be between -90 and 90")
	}
	if longitude < -180 || longitude > 180 {
		return utils.NewValidationError("longitude must be between -180 and 180")
	}

	latValid := latitude >= s.rules.MinLatitude && latitude <= s.rules.MaxLatitude
	lonValid := longitude >= s.rules.MinLongitude && longitude <= s.rules.MaxLongitude
	if !latValid || !lonValid {
		return utils.NewValidationError(fmt.Sprintf(
			"location outside the valid check-in area (latitude %v..%v, longitude %v..%v)",
			s.rules.MinLatitude, s.rules.MaxLatitude, s.rules.MinLongitude, s.rules.MaxLongitude,
		))
	}
	return nil
}
