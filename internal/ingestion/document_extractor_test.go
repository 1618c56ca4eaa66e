package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestIsBinaryData_PlainText tests that plain text is not detected as binary
func TestIsBinaryData_PlainText(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Simple text",
			content: "This is a plain text CV with normal content.",
		},
		{
			name:    "Multi-line text",
			content: "María García\nProfesora Titular\nDoctorado en Química",
		},
		{
			name:    "Text with special chars",
			content: "Formación: Maestría en Ciencias\nPromedio: 9.2/10",
		},
		{
			name:    "Empty string",
			content: "",
		},
		{
			name:    "Text with tabs and newlines",
			content: "Nombre:\tMaría\nCargo:\tProfesora\nAntigüedad:\t5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsBinaryData(tt.content) {
				t.Errorf("IsBinaryData() returned true for plain text: %q", tt.content)
			}
		})
	}
}

// TestIsBinaryData_PDF tests that PDF content is detected as binary
func TestIsBinaryData_PDF(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "PDF header v1.4",
			content: "%PDF-1.4\n%âãÏÓ\n",
		},
		{
			name:    "PDF header v1.5",
			content: "%PDF-1.5\n%ÓÔÅÔ\n1 0 obj\n",
		},
		{
			name:    "PDF header v1.7",
			content: "%PDF-1.7\n%%EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsBinaryData(tt.content) {
				t.Errorf("IsBinaryData() returned false for PDF content")
			}
		})
	}
}

// TestIsBinaryData_ZIP tests that ZIP/DOCX content is detected as binary
func TestIsBinaryData_ZIP(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "ZIP magic number",
			content: "PK\x03\x04",
		},
		{
			name:    "DOCX file (ZIP format)",
			content: "PK\x03\x04\x14\x00\x00\x00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsBinaryData(tt.content) {
				t.Errorf("IsBinaryData() returned false for ZIP/DOCX content")
			}
		})
	}
}

// TestIsBinaryData_HighNonPrintable tests binary detection with high non-printable chars
func TestIsBinaryData_HighNonPrintable(t *testing.T) {
	// Create a string with many non-printable characters (>30% of first 1000 chars)
	// This simulates corrupted or binary data
	// Non-printable means < 32 excluding \n, \r, \t
	var sb strings.Builder
	// Add 400 non-printable characters (bytes 0-31 except 9, 10, 13)
	for i := 0; i < 400; i++ {
		sb.WriteByte(0x01) // Non-printable byte
	}
	// Add 600 printable characters
	for i := 0; i < 600; i++ {
		sb.WriteString("x")
	}

	content := sb.String()

	if !IsBinaryData(content) {
		t.Errorf("IsBinaryData() returned false for content with high proportion of non-printable chars")
	}
}

// TestIsBinaryData_LowNonPrintable tests that text with few non-printable chars is not binary
func TestIsBinaryData_LowNonPrintable(t *testing.T) {
	// Create mostly normal text with a few non-printable characters
	content := "María García - Profesora Titular\x00\nDocencia: 5 años\nFormación: Doctorado en Química"

	if IsBinaryData(content) {
		t.Errorf("IsBinaryData() returned true for mostly text content with few non-printable chars")
	}
}

// TestExtractText_TXT tests that TXT files return their contents
func TestExtractText_TXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	content := "Doctorado en Química. Profesora titular."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	result, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() returned error for .txt file: %v", err)
	}
	if result != content {
		t.Errorf("ExtractText() = %q, want file contents %q", result, content)
	}
}

// TestExtractText_TXT_OddEncoding tests that a text file flagged by the
// binary heuristic still comes back with its contents rather than empty
func TestExtractText_TXT_OddEncoding(t *testing.T) {
	// UTF-16LE-style content: NUL bytes push IsBinaryData past its threshold
	raw := []byte("D\x00o\x00c\x00t\x00o\x00r\x00a\x00d\x00o\x00")
	if !IsBinaryData(string(raw)) {
		t.Fatal("Test content should trip the binary heuristic")
	}

	path := filepath.Join(t.TempDir(), "utf16.txt")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	result, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() returned error: %v", err)
	}
	if result == "" {
		t.Error("ExtractText() returned empty string for a readable .txt file")
	}
}

// TestExtractText_TXT_MissingFile tests that a missing text file is an error
func TestExtractText_TXT_MissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("ExtractText() should return error for a missing .txt file")
	}
}

// TestExtractText_UnsupportedType tests that unsupported file types return error
func TestExtractText_UnsupportedType(t *testing.T) {
	tests := []string{
		"test.jpg",
		"test.png",
		"test.xlsx",
		"test.unknown",
	}

	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			_, err := ExtractText(filename)
			if err == nil {
				t.Errorf("ExtractText() should return error for unsupported file type %s", filename)
			}
			if !strings.Contains(err.Error(), "unsupported file type") {
				t.Errorf("Error message should mention 'unsupported file type', got: %v", err)
			}
		})
	}
}

// TestExtractText_DOCX_MissingFile tests that DOCX extraction reports open failures
func TestExtractText_DOCX_MissingFile(t *testing.T) {
	_, err := ExtractText("test.docx")
	if err == nil {
		t.Error("ExtractText() should return error for non-existent .docx file")
	}
	if !strings.Contains(err.Error(), "failed to open DOCX") {
		t.Errorf("Error message should mention failing to open the file, got: %v", err)
	}
}

// TestMin tests the min helper function
func TestMin(t *testing.T) {
	tests := []struct {
		name string
		a    int
		b    int
		want int
	}{
		{
			name: "a less than b",
			a:    5,
			b:    10,
			want: 5,
		},
		{
			name: "b less than a",
			a:    10,
			b:    5,
			want: 5,
		},
		{
			name: "equal values",
			a:    7,
			b:    7,
			want: 7,
		},
		{
			name: "negative values",
			a:    -5,
			b:    -10,
			want: -10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := min(tt.a, tt.b)
			if result != tt.want {
				t.Errorf("min(%d, %d) = %d, want %d", tt.a, tt.b, result, tt.want)
			}
		})
	}
}
