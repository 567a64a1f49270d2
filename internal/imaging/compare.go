package imaging

import (
	"image"
	"math"
)

// Point represents a 2D size or coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CompareResult summarizes how far a glitched image departs from its source.
type CompareResult struct {
	SimilarityScore  float64 `json:"similarity_score"`
	PixelsDifferent  int     `json:"pixels_different"`
	TotalPixels      int     `json:"total_pixels"`
	SameSize         bool    `json:"same_size"`
	Size1            Point   `json:"size1"`
	Size2            Point   `json:"size2"`
	AverageColorDiff float64 `json:"average_color_diff"`
	AverageDeltaE    float64 `json:"average_delta_e"`
}

// DiffThreshold is the mean per-channel difference above which a pixel
// counts as changed.
const DiffThreshold = 10

// Compare compares two images pixel by pixel over their common area.
//
// AverageColorDiff is the mean absolute per-channel difference (0-255).
// AverageDeltaE is the mean CIE Lab distance, where about 0.01 is a just
// noticeable difference.
func Compare(a, b image.Image) (*CompareResult, error) {
	ab, bb := a.Bounds(), b.Bounds()
	w := min(ab.Dx(), bb.Dx())
	h := min(ab.Dy(), bb.Dy())

	result := &CompareResult{
		SameSize:    ab.Dx() == bb.Dx() && ab.Dy() == bb.Dy(),
		Size1:       Point{X: ab.Dx(), Y: ab.Dy()},
		Size2:       Point{X: bb.Dx(), Y: bb.Dy()},
		TotalPixels: w * h,
	}
	if result.TotalPixels == 0 {
		return result, nil
	}

	var totalColorDiff, totalDeltaE float64
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			c1, _ := toColorful(a, ab.Min.X+dx, ab.Min.Y+dy)
			c2, _ := toColorful(b, bb.Min.X+dx, bb.Min.Y+dy)

			r1, g1, b1 := c1.RGB255()
			r2, g2, b2 := c2.RGB255()
			diff := float64(absDiff(r1, r2)+absDiff(g1, g2)+absDiff(b1, b2)) / 3.0

			totalColorDiff += diff
			totalDeltaE += c1.DistanceLab(c2)
			if diff > DiffThreshold {
				result.PixelsDifferent++
			}
		}
	}

	n := float64(result.TotalPixels)
	result.SimilarityScore = math.Round((1.0-float64(result.PixelsDifferent)/n)*1000) / 1000
	result.AverageColorDiff = math.Round(totalColorDiff/n*100) / 100
	result.AverageDeltaE = math.Round(totalDeltaE/n*10000) / 10000
	return result, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
