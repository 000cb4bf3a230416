package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementprep/internal/errors"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		ok       bool
	}{
		{"jd.txt", FormatText, true},
		{"JD.MD", FormatText, true},
		{"posting.pdf", FormatPDF, true},
		{"posting.docx", FormatDOCX, true},
		{"careers.htm", FormatHTML, true},
		{"careers.HTML", FormatHTML, true},
		{"legacy.doc", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := FormatFor(tt.filename)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupportedExtensionsSorted(t *testing.T) {
	exts := SupportedExtensions()
	assert.IsNonDecreasing(t, exts)
	assert.Contains(t, exts, ".pdf")
	assert.Contains(t, exts, ".docx")
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract("resume.doc", []byte("whatever"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedDocument))
	assert.Contains(t, err.Error(), ".doc")
}

func TestExtractText(t *testing.T) {
	t.Run("plain utf-8", func(t *testing.T) {
		text, err := Extract("jd.txt", []byte("React developer\r\nSQL"))
		require.NoError(t, err)
		assert.Equal(t, "React developer\nSQL", text)
	})

	t.Run("utf-8 bom stripped", func(t *testing.T) {
		text, err := Extract("jd.md", append([]byte{0xEF, 0xBB, 0xBF}, "Node.js"...))
		require.NoError(t, err)
		assert.Equal(t, "Node.js", text)
	})

	t.Run("utf-16 little endian", func(t *testing.T) {
		data := []byte{0xFF, 0xFE, 'G', 0, 'o', 0}
		text, err := Extract("jd.txt", data)
		require.NoError(t, err)
		assert.Equal(t, "Go", text)
	})
}

func TestExtractHTML(t *testing.T) {
	page := `<html><head><title>Careers</title><style>.x{}</style></head>
<body>
  <script>var skills = "Kubernetes";</script>
  <h1>Frontend   Engineer</h1>
  <ul><li>React</li><li>SQL</li></ul>
  <p>Nice to have:<br>Docker</p>
</body></html>`

	text, err := Extract("posting.html", []byte(page))
	require.NoError(t, err)

	assert.Equal(t, "Frontend Engineer\nReact\nSQL\nNice to have:\nDocker", text)
	assert.NotContains(t, text, "Kubernetes")
	assert.NotContains(t, text, "Careers")
}

func TestWordprocessingText(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Backend</w:t></w:r><w:r><w:t xml:space="preserve"> Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go</w:t><w:tab/><w:t>PostgreSQL</w:t></w:r></w:p>
    <w:p><w:r><w:t>Docker</w:t><w:br/><w:t>AWS</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := wordprocessingText(body)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer\nGo PostgreSQL\nDocker\nAWS", text)

	_, err = wordprocessingText("<w:p><w:t>unterminated")
	assert.Error(t, err)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>We need React and SQL</w:t></w:r></w:p>
</w:body></w:document>`)

	text, err := Extract("posting.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "We need React and SQL", text)
}

func TestExtractCorruptDocuments(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.docx"} {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(name, []byte("definitely not a real document"))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))

			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, name, appErr.Context["filename"])
		})
	}
}
