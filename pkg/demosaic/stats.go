package demosaic

import (
	"fmt"
	"image"
	"math"
)

// StatisticsFlags controls which statistics to compute.
type StatisticsFlags int

const (
	StatNone   StatisticsFlags = 0
	StatMedian StatisticsFlags = 1
	StatMAD    StatisticsFlags = 2
	StatMean   StatisticsFlags = 4
	StatStdDev StatisticsFlags = 8
	StatAll    StatisticsFlags = StatMedian | StatMAD | StatMean | StatStdDev
)

// Statistics summarizes one output channel.
type Statistics struct {
	Median        float64
	MAD           float64
	Mean          float64
	StdDev        float64
	Min           int16
	Max           int16
	NegativeCount int64
	NumPixels     int64
}

func (s Statistics) String() string {
	return fmt.Sprintf("{Median=%.1f, MAD=%.1f, Mean=%.2f, StdDev=%.2f, Min=%d, Max=%d, Negative=%d}",
		s.Median, s.MAD, s.Mean, s.StdDev, s.Min, s.Max, s.NegativeCount)
}

const histogramBuckets = 1 << 16

// bucketValue is the int16 sample a histogram bucket counts.
func bucketValue(i int) float64 { return float64(i + math.MinInt16) }

// ChannelStatistics computes statistics of channel c over rect, or over the
// whole image when rect is nil. A 65536-bucket histogram holds every int16
// exactly, so the median and MAD are exact sample values.
func ChannelStatistics(img *RGBImage, c Channel, rect *image.Rectangle, flags StatisticsFlags) Statistics {
	bounds := img.Bounds()
	if rect != nil {
		bounds = rect.Intersect(bounds)
	}

	var result Statistics
	if bounds.Empty() {
		return result
	}

	histogram := make([]uint32, histogramBuckets)
	result.Min, result.Max = math.MaxInt16, math.MinInt16
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := img.Sample(x, y, c)
			histogram[int(v)-math.MinInt16]++
			if v < result.Min {
				result.Min = v
			}
			if v > result.Max {
				result.Max = v
			}
			if v < 0 {
				result.NegativeCount++
			}
		}
	}
	numPixels := int64(bounds.Dx()) * int64(bounds.Dy())
	result.NumPixels = numPixels

	if flags&StatMedian != 0 || flags&StatMAD != 0 {
		target := (numPixels + 1) / 2
		var count int64
		medianPosition := 0
		for i := 0; i < histogramBuckets; i++ {
			count += int64(histogram[i])
			if count >= target {
				medianPosition = i
				result.Median = bucketValue(i)
				break
			}
		}

		if flags&StatMAD != 0 {
			// Walk outward from the median, always taking the nearer bucket.
			upIndex := medianPosition
			downIndex := medianPosition - 1
			count = 0
			for {
				upDist := math.MaxFloat64
				if upIndex < histogramBuckets {
					upDist = bucketValue(upIndex) - result.Median
				}
				downDist := math.MaxFloat64
				if downIndex >= 0 {
					downDist = result.Median - bucketValue(downIndex)
				}
				var chosen int
				if upDist <= downDist {
					chosen = upIndex
					upIndex++
				} else {
					chosen = downIndex
					downIndex--
				}
				count += int64(histogram[chosen])
				if count >= target {
					result.MAD = math.Abs(bucketValue(chosen) - result.Median)
					break
				}
			}
		}
	}

	if flags&StatMean != 0 || flags&StatStdDev != 0 {
		var total float64
		for i := 0; i < histogramBuckets; i++ {
			total += float64(histogram[i]) * bucketValue(i)
		}
		result.Mean = total / float64(numPixels)

		if flags&StatStdDev != 0 && numPixels > 1 {
			var sse float64
			for i := 0; i < histogramBuckets; i++ {
				d := bucketValue(i) - result.Mean
				sse += float64(histogram[i]) * d * d
			}
			result.StdDev = math.Sqrt(sse / float64(numPixels-1))
		}
	}
	return result
}
