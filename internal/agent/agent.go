package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/amonteverde/cv-valorador/internal/ingestion"
	"github.com/amonteverde/cv-valorador/internal/models"
	"github.com/amonteverde/cv-valorador/internal/rubric"
	"github.com/amonteverde/cv-valorador/internal/scoring"
)

// ProgressCallback is called to report progress during processing
type ProgressCallback func(current, total int, message string)

// ValoradorAgent orchestrates CV ingestion, scoring and ranking
type ValoradorAgent struct {
	FileHandler     *ingestion.FileHandler
	gmailHandler    *ingestion.GmailHandler
	scorer          *scoring.Scorer
	rubricCfg       *rubric.Config
	credentialsPath string
	calibrated      bool
	results         []models.CandidateResult
	mu              sync.RWMutex
	progressCb      ProgressCallback
}

// NewValoradorAgent creates an agent that scores CVs against the given
// rubric. The scorer is built once; a broken rubric fails here instead of
// during a run.
func NewValoradorAgent(cfg *rubric.Config, uploadsDir, credentialsPath string) (*ValoradorAgent, error) {
	scorer, err := scoring.NewScorer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer: %w", err)
	}

	return &ValoradorAgent{
		FileHandler:     ingestion.NewFileHandler(uploadsDir),
		scorer:          scorer,
		rubricCfg:       cfg,
		credentialsPath: credentialsPath,
	}, nil
}

// SetProgressCallback sets the progress callback function
func (a *ValoradorAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

// reportProgress calls the progress callback if set
func (a *ValoradorAgent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// IngestFromUpload scores the documents already in the uploads directory
func (a *ValoradorAgent) IngestFromUpload(calibrated bool) error {
	return a.IngestFromUploadWithContext(context.Background(), calibrated)
}

// IngestFromUploadWithContext scores the documents already in the uploads
// directory with context
func (a *ValoradorAgent) IngestFromUploadWithContext(ctx context.Context, calibrated bool) error {
	a.reportProgress(0, 100, "Loading documents...")

	documents, err := a.FileHandler.LoadDocuments()
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	if len(documents) == 0 {
		return fmt.Errorf("no documents found in uploads directory")
	}

	log.Printf("Found %d candidates to evaluate", len(documents))
	a.reportProgress(20, 100, fmt.Sprintf("Processing %d candidates...", len(documents)))

	return a.processCandidates(ctx, documents, calibrated)
}

// IngestFromGmail fetches CVs from Gmail by subject and scores them
func (a *ValoradorAgent) IngestFromGmail(subject string, calibrated bool) error {
	return a.IngestFromGmailWithContext(context.Background(), subject, calibrated)
}

// IngestFromGmailWithContext fetches CVs from Gmail by subject and scores
// them with context
func (a *ValoradorAgent) IngestFromGmailWithContext(ctx context.Context, subject string, calibrated bool) error {
	a.reportProgress(0, 100, "Initializing Gmail handler...")

	// The Gmail handler must download into the same directory the file
	// handler loads from.
	gmailHandler, err := ingestion.NewGmailHandlerWithCallback(a.FileHandler.UploadsDir(), a.credentialsPath, func(message string) {
		a.reportProgress(20, 100, message)
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Gmail handler: %w", err)
	}
	a.gmailHandler = gmailHandler

	a.reportProgress(5, 100, "Clearing existing uploads...")

	if err := a.FileHandler.ClearUploads(); err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}

	a.reportProgress(10, 100, "Fetching emails from Gmail...")

	if err := a.gmailHandler.FetchAttachmentsWithContext(ctx, subject); err != nil {
		return fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}

	a.reportProgress(40, 100, "Loading documents...")

	documents, err := a.FileHandler.LoadDocuments()
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	if len(documents) == 0 {
		return fmt.Errorf("no documents found after Gmail fetch")
	}

	log.Printf("Found %d candidates to evaluate from Gmail", len(documents))
	a.reportProgress(50, 100, fmt.Sprintf("Processing %d candidates...", len(documents)))

	return a.processCandidates(ctx, documents, calibrated)
}

// processCandidates scores all candidates and generates rankings
func (a *ValoradorAgent) processCandidates(ctx context.Context, documents []models.CandidateDocument, calibrated bool) error {
	results := make([]models.CandidateResult, 0, len(documents))

	for i, doc := range documents {
		// Check for cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		log.Printf("Evaluating candidate %d/%d: %s", i+1, len(documents), doc.Name)

		progress := 50 + (45 * i / len(documents))
		a.reportProgress(progress, 100, fmt.Sprintf("Evaluating %s (%d/%d)", doc.Name, i+1, len(documents)))

		// Binary uploads (PDF, DOCX) need text extraction first
		if ingestion.IsBinaryData(doc.CVContent) {
			text, err := ingestion.ExtractText(doc.CVPath)
			if err != nil {
				log.Printf("Failed to extract text for %s: %v", doc.Name, err)
				continue
			}
			doc.CVContent = text
		}

		result, err := a.scorer.Evaluate(doc.CVContent, calibrated)
		if err != nil {
			if errors.Is(err, scoring.ErrEmptyDocument) {
				log.Printf("Skipping %s: document is empty after normalization", doc.Name)
				continue
			}
			return fmt.Errorf("failed to score candidate %s: %w", doc.Name, err)
		}

		results = append(results, models.CandidateResult{
			Name:   doc.Name,
			Unit:   doc.Unit,
			Result: *result,
			CVPath: doc.CVPath,
		})
	}

	a.reportProgress(95, 100, "Ranking candidates...")

	sortResults(results)

	for i := range results {
		results[i].Rank = i + 1
	}

	a.mu.Lock()
	a.results = results
	a.calibrated = calibrated
	a.mu.Unlock()

	a.reportProgress(100, 100, "Processing complete!")

	return nil
}

// sortResults orders candidates by final total, then base total, then name so
// repeated runs over the same corpus always produce the same ranking
func sortResults(results []models.CandidateResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Result.Total != results[j].Result.Total {
			return results[i].Result.Total > results[j].Result.Total
		}
		if results[i].Result.BaseTotal != results[j].Result.BaseTotal {
			return results[i].Result.BaseTotal > results[j].Result.BaseTotal
		}
		return results[i].Name < results[j].Name
	})
}

// GetReport returns the evaluation report
func (a *ValoradorAgent) GetReport() (models.ReportResponse, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.results) == 0 {
		return models.ReportResponse{}, fmt.Errorf("no results available, run ingestion first")
	}

	return models.ReportResponse{
		Candidates:    a.results,
		RubricVersion: a.rubricCfg.Version,
		Calibrated:    a.calibrated,
		Timestamp:     time.Now().Format(time.RFC3339),
	}, nil
}

// GetResults returns the current results (thread-safe)
func (a *ValoradorAgent) GetResults() []models.CandidateResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	// Return a copy to prevent external modification
	resultsCopy := make([]models.CandidateResult, len(a.results))
	copy(resultsCopy, a.results)
	return resultsCopy
}

// Rubric returns the rubric the agent scores against
func (a *ValoradorAgent) Rubric() *rubric.Config {
	return a.rubricCfg
}
