package units

// Scale converts mini-surface pixel distances to metres. It is the ratio of a
// known physical surface dimension to the same dimension drawn in pixels.
type Scale struct {
	MetersPerPixel float64 `json:"meters_per_pixel"`
}

// NewScale returns the scale mapping surfacePixels drawn pixels onto
// surfaceMeters real metres. A non-positive pixel length yields a zero scale,
// which converts every distance to zero.
func NewScale(surfaceMeters, surfacePixels float64) Scale {
	if surfacePixels <= 0 {
		return Scale{}
	}
	return Scale{MetersPerPixel: surfaceMeters / surfacePixels}
}

// Meters converts a pixel distance to metres.
func (s Scale) Meters(px float64) float64 {
	return px * s.MetersPerPixel
}

// Pixels converts a metre distance to pixels.
func (s Scale) Pixels(m float64) float64 {
	if s.MetersPerPixel == 0 {
		return 0
	}
	return m / s.MetersPerPixel
}

// FramesToSeconds converts a frame count to seconds at the given frame rate.
func FramesToSeconds(frames int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}

// SpeedMPS returns the speed in m/s of covering meters over the given number
// of frames. Zero or negative frame spans yield zero.
func SpeedMPS(meters float64, frames int, fps float64) float64 {
	secs := FramesToSeconds(frames, fps)
	if secs <= 0 {
		return 0
	}
	return meters / secs
}
