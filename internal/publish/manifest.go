package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pixelgraph/internal/minecraft"
	"pixelgraph/internal/packio"
)

// DefaultManifest is the manifest path used when none is configured.
const DefaultManifest = "publish.json"

// ManifestEntry represents one material or file in the publish manifest.
type ManifestEntry struct {
	Name  string   `json:"name"`
	Kind  Kind     `json:"kind"`
	State string   `json:"state"`
	Files []string `json:"files,omitempty"`
	Error string   `json:"error,omitempty"`
}

// WriteManifest writes the publish manifest to p.
func WriteManifest(w packio.Writer, p string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:  r.Name,
			Kind:  r.Kind,
			State: r.State.String(),
			Files: r.Written,
			Error: r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := packio.WriteFile(w, p, data); err != nil {
		return fmt.Errorf("publish: write %s: %w", p, err)
	}
	return nil
}

// ReadManifest returns the files each item wrote in the run that produced
// the manifest at p, keyed by item name. A missing manifest yields an empty
// record.
func ReadManifest(w packio.Writer, p string) (map[string][]string, error) {
	record := make(map[string][]string)
	data, err := w.ReadFile(p)
	if errors.Is(err, packio.ErrNotFound) {
		return record, nil
	}
	if err != nil {
		return record, fmt.Errorf("publish: read %s: %w", p, err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return record, fmt.Errorf("publish: parse %s: %w", p, err)
	}
	for _, e := range entries {
		if len(e.Files) > 0 {
			record[e.Name] = e.Files
		}
	}
	return record, nil
}

type packMeta struct {
	Pack packSection `json:"pack"`
}

type packSection struct {
	PackFormat  int    `json:"pack_format"`
	Description string `json:"description"`
}

// PackDescription joins the description and tags into one line.
func PackDescription(description string, tags []string) string {
	parts := []string{}
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (p *Publisher) writePackMeta() error {
	format, ok := minecraft.PackFormat(p.opt.GameVersion)
	if !ok {
		p.log.Warn("unknown game version, using latest pack format",
			zap.String("version", p.opt.GameVersion),
			zap.Int("pack_format", minecraft.LatestJavaPackFormat))
		format = minecraft.LatestJavaPackFormat
	}
	meta := packMeta{Pack: packSection{
		PackFormat:  format,
		Description: PackDescription(p.opt.Description, p.opt.Tags),
	}}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := packio.WriteFile(p.opt.Writer, packMetaFile, data); err != nil {
		return fmt.Errorf("publish: write %s: %w", packMetaFile, err)
	}
	return nil
}
