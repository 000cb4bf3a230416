package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementprep/internal/errors"
)

type docNames struct {
	Names []string `json:"names"`
	Chars []int    `json:"chars"`
}

func collectNames(_ context.Context, docs []Document) (docNames, error) {
	var out docNames
	for _, d := range docs {
		out.Names = append(out.Names, d.Name)
		out.Chars = append(out.Chars, len(d.Text))
	}
	return out, nil
}

func newTestCommand(buf *bytes.Buffer, cfg CommandConfig) DocumentCommand {
	logger := errors.NewDiscardLogger()
	return DocumentCommand{
		Logger:        logger,
		FileProcessor: NewFileProcessor(logger, 1024),
		OutputHandler: NewOutputHandlerWithWriter(logger, buf),
		Config:        cfg,
	}
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRunDocumentCommandReadsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeInput(t, dir, "first.txt", "React and SQL")
	second := writeInput(t, dir, "second.md", "Go")

	var buf bytes.Buffer
	cmd := newTestCommand(&buf, CommandConfig{OutputFormat: "json"})

	err := RunDocumentCommand(context.Background(), cmd, []string{first, second},
		[]Document{{Name: "inline", Text: "Docker"}}, collectNames)
	require.NoError(t, err)

	assert.JSONEq(t, `{"names":["inline","`+first+`","`+second+`"],"chars":[6,13,2]}`, buf.String())
}

func TestRunDocumentCommandWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "jd.txt", "Python")
	output := filepath.Join(dir, "out", "result.json")

	var buf bytes.Buffer
	cmd := newTestCommand(&buf, CommandConfig{OutputFormat: "json", OutputFile: output})

	require.NoError(t, RunDocumentCommand(context.Background(), cmd, []string{input}, nil, collectNames))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "jd.txt")
}

func TestRunDocumentCommandErrors(t *testing.T) {
	dir := t.TempDir()
	unsupported := writeInput(t, dir, "jd.exe", "binary")
	tooLarge := writeInput(t, dir, "big.txt", string(bytes.Repeat([]byte("a"), 2048)))

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no input", nil, errors.ErrCodeInvalidRequest},
		{"unsupported extension", []string{unsupported}, errors.ErrCodeUnsupportedDocument},
		{"missing file", []string{filepath.Join(dir, "missing.txt")}, "INVALID_INPUT_FILE"},
		{"file over size limit", []string{tooLarge}, "INVALID_INPUT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := newTestCommand(&buf, CommandConfig{OutputFormat: "json"})

			called := false
			err := RunDocumentCommand(context.Background(), cmd, tt.args, nil,
				func(ctx context.Context, docs []Document) (docNames, error) {
					called = true
					return collectNames(ctx, docs)
				})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
			assert.False(t, called)
			assert.Empty(t, buf.String())
		})
	}
}

func TestOutputHandlerRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandlerWithWriter(errors.NewDiscardLogger(), &buf)

	err := handler.HandleOutput(docNames{}, CommandConfig{OutputFormat: "yaml"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
	assert.Empty(t, buf.String())
}

func TestOutputHandlerWriteText(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandlerWithWriter(errors.NewDiscardLogger(), &buf)

	require.NoError(t, handler.WriteText("Day 1: Basics\n", CommandConfig{}))
	assert.Equal(t, "Day 1: Basics\n", buf.String())
}
