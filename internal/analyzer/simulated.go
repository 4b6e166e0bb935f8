package analyzer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/suricata-ml/dashboard/internal/models"
)

// SimulatedAnalyzer stands in for the ML backend during UI work.
// It waits for Delay and answers with SampleResult.
type SimulatedAnalyzer struct {
	Delay time.Duration
}

// NewSimulatedAnalyzer creates a simulated analyzer.
func NewSimulatedAnalyzer(delay time.Duration) *SimulatedAnalyzer {
	return &SimulatedAnalyzer{Delay: delay}
}

// Name identifies the backend mode.
func (a *SimulatedAnalyzer) Name() string {
	return "simulated"
}

// Analyze drains content, waits and returns the sample summary.
func (a *SimulatedAnalyzer) Analyze(ctx context.Context, name string, content io.Reader) (*models.AnalysisResult, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	timer := time.NewTimer(a.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return SampleResult(), nil
}

// SampleResult returns a fixed summary shaped like a real backend answer.
func SampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		TotalProcessed: 156,
		AvgProbability: 0.8743,
		ClassCounts: map[string]int{
			"BENIGN":    102,
			"DoS":       28,
			"Port Scan": 19,
			"DDoS":      7,
		},
		RecentEntries: []models.RecentEntry{
			{Timestamp: "2025-03-15T14:22:31.000Z", SrcIP: "192.168.1.105", DestIP: "10.0.0.1", Prediction: "BENIGN", Probability: 0.9821},
			{Timestamp: "2025-03-15T14:22:30.000Z", SrcIP: "203.0.113.42", DestIP: "10.0.0.5", Prediction: "DoS", Probability: 0.8976},
			{Timestamp: "2025-03-15T14:22:28.000Z", SrcIP: "198.51.100.17", DestIP: "10.0.0.8", Prediction: "Port Scan", Probability: 0.9234},
			{Timestamp: "2025-03-15T14:22:25.000Z", SrcIP: "192.168.1.110", DestIP: "10.0.0.1", Prediction: "BENIGN", Probability: 0.9912},
			{Timestamp: "2025-03-15T14:22:21.000Z", SrcIP: "203.0.113.99", DestIP: "10.0.0.5", Prediction: "DDoS", Probability: 0.8543},
		},
	}
}
