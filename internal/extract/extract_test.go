package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
	<w:body>
		<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
		<w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go, Kubernetes</w:t></w:r></w:p>
		<w:p><w:r><w:t>Mentoring</w:t><w:tab/><w:t>Agile</w:t></w:r></w:p>
	</w:body>
</w:document>`

const relationshipsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relationshipsXML,
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		format Format
		ok     bool
	}{
		{name: "resume.PDF", format: PDF, ok: true},
		{name: "resume.docx", format: DOCX, ok: true},
		{name: "posting.htm", format: HTML, ok: true},
		{name: "notes.md", format: Text, ok: true},
		{name: "upload", data: []byte("%PDF-1.7\n..."), format: PDF, ok: true},
		{name: "upload", data: []byte("<!DOCTYPE html><html><body>hi</body></html>"), format: HTML, ok: true},
		{name: "upload", data: []byte("plain resume text"), format: Text, ok: true},
		{name: "image.png", data: []byte("\x89PNG\r\n\x1a\n"), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			format, ok := Detect(tt.name, tt.data)
			if ok != tt.ok || format != tt.format {
				t.Fatalf("Detect(%q) = %q, %v; want %q, %v", tt.name, format, ok, tt.format, tt.ok)
			}
		})
	}
}

func TestDocumentPlainText(t *testing.T) {
	text, err := Document("resume.txt", []byte("  Go developer\nKubernetes  \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Go developer\nKubernetes" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestDocumentDocx(t *testing.T) {
	text, err := Document("resume.docx", buildDocx(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Jane Doe\nSkills: Go, Kubernetes\nMentoring\tAgile"
	if text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", text, want)
	}
}

func TestDocumentFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data []byte
		want error
	}{
		{name: "unsupported", file: "photo.png", data: []byte("\x89PNG\r\n\x1a\n"), want: ErrUnsupported},
		{name: "corrupted pdf", file: "resume.pdf", data: []byte("definitely not a pdf")},
		{name: "corrupted docx", file: "resume.docx", data: []byte("not a zip")},
		{name: "empty text", file: "resume.txt", data: []byte("   \n ")},
		{name: "invalid utf8", file: "resume.txt", data: []byte{0xff, 0xfe, 0xfd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Document(tt.file, tt.data)
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if extractionErr.Name != tt.file {
				t.Fatalf("unexpected name %q", extractionErr.Name)
			}
		})
	}
}

func TestHTMLText(t *testing.T) {
	page := `<html><head><title>Job</title><script>var x = 1;</script></head>
<body>
	<nav>Home | Jobs</nav>
	<div class="job-description">
		<h2>Backend Engineer</h2>
		<p>We build   payment systems.</p>
		<ul><li>5+ years of Go</li><li>Experience with PostgreSQL</li></ul>
	</div>
	<footer>Copyright</footer>
</body></html>`

	text, err := HTMLText(page, JobPostingSelectors())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Backend Engineer\nWe build payment systems.\n- 5+ years of Go\n- Experience with PostgreSQL"
	if text != want {
		t.Fatalf("unexpected text:\n got %q\nwant %q", text, want)
	}
	if strings.Contains(text, "Copyright") || strings.Contains(text, "Home") {
		t.Fatalf("noise was not removed: %q", text)
	}
}

func TestFromMIME(t *testing.T) {
	if f, ok := FromMIME("application/pdf"); !ok || f != PDF {
		t.Fatalf("unexpected format %q", f)
	}
	if f, ok := FromMIME("text/html; charset=utf-8"); !ok || f != HTML {
		t.Fatalf("unexpected format %q", f)
	}
	if _, ok := FromMIME("image/png"); ok {
		t.Fatal("image/png must not be supported")
	}
}
