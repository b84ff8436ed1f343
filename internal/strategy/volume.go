package strategy

import "github.com/marlinhq/marlin/internal/indicator"

// VolumeOK applies the shared volume filter: the entry bar's volume must be
// at least VolumeMinRatio times its moving average. A zero period or ratio
// disables the filter; an undefined average (insufficient history) fails it.
func VolumeOK(i int, ind *indicator.Set, p Params) bool {
	if p.VolumePeriod <= 0 || p.VolumeMinRatio <= 0 {
		return true
	}
	avg, ok := ind.VolumeSMA(p.VolumePeriod).At(i)
	if !ok {
		return false
	}
	return ind.Volume(i) >= p.VolumeMinRatio*avg
}
