package models

// Profile represents the routing profile used to calculate a route.
type Profile string

const (
	ProfileFoot    Profile = "foot"
	ProfileBicycle Profile = "bicycle"
	ProfileCar     Profile = "car"
)

// DefaultProfile is used when no profile is specified.
const DefaultProfile = ProfileFoot

// IsValid checks if the profile is one of the supported routing profiles.
func (p Profile) IsValid() bool {
	switch p {
	case ProfileFoot, ProfileBicycle, ProfileCar:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable name for the profile, used in exports.
func (p Profile) DisplayName() string {
	switch p {
	case ProfileFoot:
		return "Walking"
	case ProfileBicycle:
		return "Cycling"
	case ProfileCar:
		return "Driving"
	default:
		return string(p)
	}
}
