// package formatter exports playlist search results to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Format identifies an export output format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return Format(s), nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, s)
	}
}

// ExportToCSV converts search results to CSV with columns: ID, Name, Owner, Tracks, Public, URI
func ExportToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Owner", "Tracks", "Public", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		record := []string{
			p.ID,
			p.Name,
			p.Owner,
			strconv.Itoa(p.TrackCount),
			strconv.FormatBool(p.Public),
			p.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts search results to a Markdown document titled by the query
func ExportToMarkdown(query string, playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Playlists matching %q\n\n", query))
	buf.WriteString(fmt.Sprintf("**Results**: %d\n\n", len(playlists)))

	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. **%s** by %s (%d tracks)\n", i+1, p.Name, p.Owner, p.TrackCount))
		if p.Description != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", p.Description))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts search results to plain text
func ExportToText(query string, playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Query: %s\n", query))
	buf.WriteString(fmt.Sprintf("Results: %d\n\n", len(playlists)))

	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s by %s (%d tracks)\n", i+1, p.Name, p.Owner, p.TrackCount))
	}

	return buf.Bytes(), nil
}

// ExportToJSON serializes search results as pretty-printed JSON
func ExportToJSON(playlists []models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlists, true)
}

// Render produces the export bytes for the given format.
func Render(format Format, query string, playlists []models.Playlist) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(playlists)
	case FormatMarkdown:
		return ExportToMarkdown(query, playlists)
	case FormatText:
		return ExportToText(query, playlists)
	case FormatJSON:
		return ExportToJSON(playlists)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, format)
	}
}

// WriteExport renders search results and writes them to a file.
//
// Defaults the filename to "search_results.<ext>" when filepath is empty and
// returns the path written.
func WriteExport(format Format, query string, playlists []models.Playlist, filepath string) (string, error) {
	data, err := Render(format, query, playlists)
	if err != nil {
		return "", err
	}

	if filepath == "" {
		filepath = fmt.Sprintf("search_results.%s", format)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filepath, nil
}
