package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ZanzyTHEbar/file-lens/flens/index"
)

const largestFilesLimit = 10

type ExtensionStats struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
	Bytes     int64  `json:"bytes"`
}

// SizeSummary describes the distribution of file sizes in bytes.
type SizeSummary struct {
	Files        int                `json:"files"`
	Directories  int                `json:"directories"`
	TotalBytes   int64              `json:"totalBytes"`
	MinBytes     float64            `json:"minBytes"`
	MaxBytes     float64            `json:"maxBytes"`
	MeanBytes    float64            `json:"meanBytes"`
	StdDevBytes  float64            `json:"stdDevBytes"`
	MedianBytes  float64            `json:"medianBytes"`
	P90Bytes     float64            `json:"p90Bytes"`
	Oldest       time.Time          `json:"oldest"`
	Newest       time.Time          `json:"newest"`
	LargestFiles []index.Descriptor `json:"largestFiles"`
}

// ExtensionBreakdown counts files and bytes per lower-cased extension,
// most frequent first.
func (e *Engine) ExtensionBreakdown() []ExtensionStats {
	byExt := make(map[string]*ExtensionStats)
	for _, d := range e.idx.Descriptors() {
		ext := strings.ToLower(d.Extension)
		s, ok := byExt[ext]
		if !ok {
			s = &ExtensionStats{Extension: ext}
			byExt[ext] = s
		}
		s.Count++
		s.Bytes += d.SizeBytes
	}

	out := make([]ExtensionStats, 0, len(byExt))
	for _, s := range byExt {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}

// SizeSummary computes size statistics over every indexed file. An empty
// index yields a zero summary.
func (e *Engine) SizeSummary() SizeSummary {
	descs := e.idx.Descriptors()
	summary := SizeSummary{Files: len(descs), LargestFiles: []index.Descriptor{}}
	if len(descs) == 0 {
		return summary
	}

	sizes := make([]float64, len(descs))
	dirs := make(map[string]struct{})
	summary.Oldest = descs[0].ModifiedAt
	summary.Newest = descs[0].ModifiedAt
	for i, d := range descs {
		sizes[i] = float64(d.SizeBytes)
		summary.TotalBytes += d.SizeBytes
		dirs[d.Dir] = struct{}{}
		if d.ModifiedAt.Before(summary.Oldest) {
			summary.Oldest = d.ModifiedAt
		}
		if d.ModifiedAt.After(summary.Newest) {
			summary.Newest = d.ModifiedAt
		}
	}
	summary.Directories = len(dirs)

	sort.Float64s(sizes)
	summary.MinBytes = floats.Min(sizes)
	summary.MaxBytes = floats.Max(sizes)
	summary.MeanBytes = stat.Mean(sizes, nil)
	summary.MedianBytes = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	summary.P90Bytes = stat.Quantile(0.9, stat.Empirical, sizes, nil)
	if len(sizes) > 1 {
		summary.StdDevBytes = stat.StdDev(sizes, nil)
	}
	if math.IsNaN(summary.StdDevBytes) {
		summary.StdDevBytes = 0
	}

	largest := make([]index.Descriptor, len(descs))
	copy(largest, descs)
	sort.SliceStable(largest, func(i, j int) bool {
		return largest[i].SizeBytes > largest[j].SizeBytes
	})
	if len(largest) > largestFilesLimit {
		largest = largest[:largestFilesLimit]
	}
	summary.LargestFiles = largest

	return summary
}
