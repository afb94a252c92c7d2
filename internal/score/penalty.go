package score

import (
	"errors"
	"slices"
	"strings"
)

// PenaltyTier subtracts Points when the third-party request count is
// strictly greater than Above.
type PenaltyTier struct {
	Above  int `yaml:"above" json:"above"`
	Points int `yaml:"points" json:"points"`
}

// PenaltyTable is a list of tiers. The tier with the highest Above that
// the count exceeds applies; tiers do not accumulate.
type PenaltyTable []PenaltyTier

// Penalty profile names accepted in configuration.
const (
	ProfileOnDemand   = "on-demand"
	ProfileContinuous = "continuous"
)

// ErrUnknownPenaltyProfile is returned by PenaltiesFor.
var ErrUnknownPenaltyProfile = errors.New("unknown penalty profile: must be on-demand or continuous")

// OnDemandPenalties returns the table used when a user asks for a grade.
func OnDemandPenalties() PenaltyTable {
	return PenaltyTable{
		{Above: 15, Points: 20},
		{Above: 8, Points: 10},
	}
}

// ContinuousPenalties returns the gentler table used for background
// badge updates.
func ContinuousPenalties() PenaltyTable {
	return PenaltyTable{
		{Above: 20, Points: 15},
		{Above: 12, Points: 8},
		{Above: 6, Points: 3},
	}
}

// PenaltiesFor returns the table for a profile name.
func PenaltiesFor(profile string) (PenaltyTable, error) {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case "", ProfileOnDemand:
		return OnDemandPenalties(), nil
	case ProfileContinuous:
		return ContinuousPenalties(), nil
	default:
		return nil, ErrUnknownPenaltyProfile
	}
}

// Penalty returns the points to subtract for thirdParty requests.
func (t PenaltyTable) Penalty(thirdParty int) int {
	tiers := slices.Clone(t)
	slices.SortFunc(tiers, func(a, b PenaltyTier) int {
		return b.Above - a.Above
	})
	for _, tier := range tiers {
		if thirdParty > tier.Above {
			return tier.Points
		}
	}
	return 0
}
