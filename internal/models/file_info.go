package models

import (
	"math"
	"time"
)

// FileInfo represents a log file chosen by the user and held until it is submitted.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	SelectedAt time.Time `json:"selectedAt"`
}

// SizeKB returns the size in kilobytes rounded to two decimals.
func (f *FileInfo) SizeKB() float64 {
	return math.Round(float64(f.Size)/1024*100) / 100
}
