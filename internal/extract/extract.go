// Package extract pulls plain text out of uploaded résumés and scores the
// result against a job's skill list.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// TextFromBytes extracts plain text from an in-memory résumé payload.
// Plain-text uploads pass through unchanged; PDFs go through
// github.com/ledongthuc/pdf.
func TextFromBytes(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeMimeType(mimeType, data) {
	case mimePDF:
		return extractPDF(data)
	default:
		return string(data), nil
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func normalizeMimeType(mimeType string, data []byte) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	if normalized == "" && bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	return normalized
}

// ScoreResume computes a 0-100 keyword-overlap score: the share of the
// job's skills that appear in the résumé text. No skills means nothing to
// score against, which yields zero rather than a perfect match.
func ScoreResume(skills []string, resumeText string) float64 {
	if len(skills) == 0 || strings.TrimSpace(resumeText) == "" {
		return 0
	}
	haystack := strings.ToLower(resumeText)
	matched := 0
	for _, skill := range skills {
		needle := strings.ToLower(strings.TrimSpace(skill))
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			matched++
		}
	}
	score := float64(matched) / float64(len(skills)) * 100
	return math.Round(score*100) / 100
}
