// Package models contains domain types for the Suricata ML dashboard.
package models

// AnalysisResult is the classification summary returned by the ML backend
// for one uploaded eve.json file.
type AnalysisResult struct {
	TotalProcessed int            `json:"totalProcessed" msgpack:"totalProcessed"`
	AvgProbability float64        `json:"avgProbability" msgpack:"avgProbability"`
	ClassCounts    map[string]int `json:"classCounts" msgpack:"classCounts"`
	RecentEntries  []RecentEntry  `json:"recentEntries" msgpack:"recentEntries"`
}

// RecentEntry is one classified log line as reported by the backend.
type RecentEntry struct {
	Timestamp   string  `json:"timestamp" msgpack:"timestamp"`
	SrcIP       string  `json:"src_ip" msgpack:"src_ip"`
	DestIP      string  `json:"dest_ip" msgpack:"dest_ip"`
	Prediction  string  `json:"prediction" msgpack:"prediction"`
	Probability float64 `json:"probability" msgpack:"probability"`
}
