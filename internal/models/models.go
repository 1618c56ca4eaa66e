package models

// CandidateDocument holds the extracted CV text for one candidate
type CandidateDocument struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"` // academic unit or institute
	CVContent string `json:"cv_content"`
	CVPath    string `json:"cv_path"`
}

// SignalCounts maps rubric item names to the occurrence counts extracted
// from one CV. Derived fresh per evaluation, never shared between them.
type SignalCounts map[string]int

// ScoreResult is the outcome of scoring one CV against the rubric. It is
// produced once per evaluation and never mutated afterwards. SignalCounts is
// kept for the audit sheet of the exported report.
type ScoreResult struct {
	SectionSubtotals map[string]int `json:"section_subtotals"`
	BaseTotal        int            `json:"base_total"`
	Total            int            `json:"total"`
	Calibrated       bool           `json:"calibrated"`
	Category         string         `json:"category"`
	SignalCounts     SignalCounts   `json:"signal_counts"`
}

// CandidateResult represents the evaluation result for one candidate
type CandidateResult struct {
	Name   string      `json:"name"`
	Unit   string      `json:"unit,omitempty"`
	Result ScoreResult `json:"result"`
	Rank   int         `json:"rank"`
	CVPath string      `json:"cv_path,omitempty"`
}

// IngestRequest represents the request payload for document ingestion
type IngestRequest struct {
	Method       string `json:"method"`        // "upload" or "gmail"
	GmailSubject string `json:"gmail_subject"` // Subject filter for Gmail
	Calibrated   bool   `json:"calibrated"`    // Apply empirical calibration
}

// ReportResponse represents the response with ranked candidates
type ReportResponse struct {
	Candidates    []CandidateResult `json:"candidates"`
	RubricVersion string            `json:"rubric_version"`
	Calibrated    bool              `json:"calibrated"`
	Timestamp     string            `json:"timestamp"`
}
