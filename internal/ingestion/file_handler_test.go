package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileHandler(t *testing.T) {
	fh := NewFileHandler("test_uploads")
	if fh == nil {
		t.Fatal("Expected non-nil FileHandler")
	}

	if fh.uploadsDir != "test_uploads" {
		t.Errorf("Expected uploadsDir 'test_uploads', got '%s'", fh.uploadsDir)
	}

	if fh.UploadsDir() != "test_uploads" {
		t.Errorf("UploadsDir() = '%s', want 'test_uploads'", fh.UploadsDir())
	}
}

func TestSaveUploadedFile(t *testing.T) {
	// Create temporary directory for test
	tmpDir := filepath.Join(os.TempDir(), "cv_valorador_test")
	defer os.RemoveAll(tmpDir)

	fh := NewFileHandler(tmpDir)

	content := strings.NewReader("Test CV content")
	filename := "Garcia_CV.txt"

	path, err := fh.SaveUploadedFile(filename, content)
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, filename)
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	// Verify file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File was not created at %s", path)
	}

	// Verify file content
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	if string(data) != "Test CV content" {
		t.Errorf("Expected content 'Test CV content', got '%s'", string(data))
	}
}

func TestLoadDocuments(t *testing.T) {
	// Create temporary directory for test
	tmpDir := filepath.Join(os.TempDir(), "cv_valorador_test_load")
	defer os.RemoveAll(tmpDir)

	os.MkdirAll(tmpDir, 0755)

	cvContent := []byte("Doctorado en Química. Profesora titular.")

	os.WriteFile(filepath.Join(tmpDir, "Garcia_CV.txt"), cvContent, 0644)
	// Files without the CV marker are ignored
	os.WriteFile(filepath.Join(tmpDir, "Garcia_Notas.txt"), []byte("notes"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("readme"), 0644)

	fh := NewFileHandler(tmpDir)
	docs, err := fh.LoadDocuments()
	if err != nil {
		t.Fatalf("Failed to load documents: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}

	doc := docs[0]
	if doc.Name != "Garcia" {
		t.Errorf("Expected name 'Garcia', got '%s'", doc.Name)
	}

	if doc.Unit != "" {
		t.Errorf("Expected empty unit, got '%s'", doc.Unit)
	}

	if doc.CVContent != string(cvContent) {
		t.Errorf("CV content mismatch")
	}
}

func TestLoadDocuments_UnitSegment(t *testing.T) {
	tmpDir := filepath.Join(os.TempDir(), "cv_valorador_test_unit")
	defer os.RemoveAll(tmpDir)

	os.MkdirAll(tmpDir, 0755)
	os.WriteFile(filepath.Join(tmpDir, "Lopez_FCE_CV.txt"), []byte("Maestría en Economía"), 0644)

	fh := NewFileHandler(tmpDir)
	docs, err := fh.LoadDocuments()
	if err != nil {
		t.Fatalf("Failed to load documents: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}

	if docs[0].Name != "Lopez" {
		t.Errorf("Expected name 'Lopez', got '%s'", docs[0].Name)
	}

	if docs[0].Unit != "FCE" {
		t.Errorf("Expected unit 'FCE', got '%s'", docs[0].Unit)
	}
}

func TestLoadDocuments_SortedByName(t *testing.T) {
	tmpDir := filepath.Join(os.TempDir(), "cv_valorador_test_sort")
	defer os.RemoveAll(tmpDir)

	os.MkdirAll(tmpDir, 0755)
	os.WriteFile(filepath.Join(tmpDir, "Zapata_CV.txt"), []byte("cv"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "Acosta_CV.txt"), []byte("cv"), 0644)
	os.WriteFile(filepath.Join(tmpDir, "Molina_CV.txt"), []byte("cv"), 0644)

	fh := NewFileHandler(tmpDir)
	docs, err := fh.LoadDocuments()
	if err != nil {
		t.Fatalf("Failed to load documents: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}

	want := []string{"Acosta", "Molina", "Zapata"}
	for i, name := range want {
		if docs[i].Name != name {
			t.Errorf("docs[%d].Name = %q, want %q", i, docs[i].Name, name)
		}
	}
}

func TestClearUploads(t *testing.T) {
	// Create temporary directory for test
	tmpDir := filepath.Join(os.TempDir(), "cv_valorador_test_clear")
	defer os.RemoveAll(tmpDir)

	os.MkdirAll(tmpDir, 0755)
	os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test"), 0644)

	fh := NewFileHandler(tmpDir)
	err := fh.ClearUploads()
	if err != nil {
		t.Fatalf("Failed to clear uploads: %v", err)
	}

	// Directory should exist but be empty
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}

	if len(entries) != 0 {
		t.Errorf("Expected empty directory, got %d entries", len(entries))
	}
}
