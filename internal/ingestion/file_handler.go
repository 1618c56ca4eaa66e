package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amonteverde/cv-valorador/internal/models"
)

// FileHandler manages file operations for CV ingestion
type FileHandler struct {
	uploadsDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
	}
}

// UploadsDir returns the directory this handler reads and writes. Collaborators
// that download files for the handler to pick up must use the same directory.
func (fh *FileHandler) UploadsDir() string {
	return fh.uploadsDir
}

// SaveUploadedFile saves an uploaded file to the uploads directory
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	// Ensure uploads directory exists
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filePath := filepath.Join(fh.uploadsDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// LoadDocuments loads all CV documents from the uploads directory.
// Filename convention: "Name_CV.ext" or "Name_Unit_CV.ext", where the
// optional middle segment is the candidate's academic unit.
func (fh *FileHandler) LoadDocuments() ([]models.CandidateDocument, error) {
	files, err := os.ReadDir(fh.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.CandidateDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	documents := make([]models.CandidateDocument, 0, len(files))

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		filename := file.Name()
		ext := strings.ToLower(filepath.Ext(filename))

		if ext != ".pdf" && ext != ".txt" && ext != ".doc" && ext != ".docx" {
			continue
		}

		baseName := strings.TrimSuffix(filename, ext)
		parts := strings.Split(baseName, "_")

		// The last segment must mark the file as a CV
		if len(parts) < 2 {
			continue
		}
		marker := strings.ToLower(parts[len(parts)-1])
		if marker != "cv" && marker != "resume" && marker != "curriculum" {
			continue
		}

		doc := models.CandidateDocument{
			Name: parts[0],
		}
		if len(parts) >= 3 {
			doc.Unit = strings.Join(parts[1:len(parts)-1], " ")
		}

		filePath := filepath.Join(fh.uploadsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
		}

		doc.CVContent = string(content)
		doc.CVPath = filePath
		documents = append(documents, doc)
	}

	// Deterministic ordering regardless of directory layout
	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Name < documents[j].Name
	})

	return documents, nil
}

// ClearUploads removes all files from the uploads directory
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0755)
}
