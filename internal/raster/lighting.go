package raster

import (
	"math"

	"rig-reorient/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters.
type LightConfig struct {
	LightDir mathutil.Vec3
	RimDir   mathutil.Vec3
	Ambient  float64
	Direct   float64
	Rim      float64
}

func unit(v mathutil.Vec3) mathutil.Vec3 {
	u, err := v.Normalize()
	if err != nil {
		return mathutil.Vec3{0, 0, 1}
	}
	return u
}

// DefaultLightConfig is a key light from the upper right plus a cool rim from behind.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: unit(mathutil.Vec3{180, 260, 140}),
		RimDir:   unit(mathutil.Vec3{-160, 130, -210}),
		Ambient:  0.35,
		Direct:   0.60,
		Rim:      0.20,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))
	return lc.Ambient + ndlMain*lc.Direct + ndlRim*lc.Rim
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
