package organizer

import (
	"context"
	"errors"
	"path/filepath"

	"taxfiler/internal/classify"
	"taxfiler/internal/filer"
	"taxfiler/internal/logging"
	"taxfiler/internal/naming"
	"taxfiler/internal/pdftext"
	"taxfiler/internal/services"
)

const stagePlanning = "planning"

// Planned is the dry-run decision for one source file.
type Planned struct {
	SourcePath     string          `json:"source_path"`
	OriginalName   string          `json:"original_name"`
	Classification classify.Result `json:"classification"`
	SuggestedName  string          `json:"suggested_name,omitempty"`
	CategoryFolder string          `json:"category_folder,omitempty"`
	// Destination is where the file would land if nothing already occupies
	// the name; the filer adds a _(N) suffix otherwise.
	Destination string `json:"destination,omitempty"`
	TextUsed    bool   `json:"text_used"`
	Skipped     bool   `json:"skipped,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Err         error  `json:"-"`
}

// Ready reports whether the plan can be executed.
func (p Planned) Ready() bool {
	return !p.Skipped && p.Err == nil && p.SuggestedName != ""
}

// Operation converts a ready plan into a filer operation.
func (p Planned) Operation(s Settings) filer.Operation {
	return filer.Operation{
		SourcePath:       p.SourcePath,
		CanonicalName:    p.SuggestedName,
		TargetDir:        s.TargetDir,
		CreateSubfolders: s.CreateSubfolders,
		Backup:           s.Backup,
	}
}

// Plan classifies and names each path without touching the filesystem
// beyond reading. Results are returned in input order.
func (o *Organizer) Plan(ctx context.Context, paths []string) []Planned {
	plans := make([]Planned, 0, len(paths))
	for _, path := range paths {
		plans = append(plans, o.plan(ctx, path))
	}
	return plans
}

func (o *Organizer) plan(ctx context.Context, path string) Planned {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := Planned{SourcePath: path, OriginalName: filepath.Base(path)}
	ctx = services.WithSourcePath(services.WithStage(ctx, stagePlanning), path)
	logger := logging.WithContext(ctx, o.logger)

	if o.tracker != nil {
		processed, err := o.tracker.HasBeenProcessed(ctx, path)
		if err != nil {
			logging.WarnWithContext(logger, "tracker lookup failed", "tracker_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the state database"),
				logging.String(logging.FieldImpact, "file treated as new"),
			)
		} else if processed {
			p.Skipped = true
			p.Reason = "already processed"
			logger.Debug("file skipped", logging.Args(logging.DecisionAttrs("tracking", "skip", p.Reason)...)...)
			return p
		}
	}

	text := o.extractText(ctx, path)
	p.TextUsed = text != ""
	p.Classification = classify.Classify(p.OriginalName, text)

	req := naming.RequestFrom(p.Classification)
	if req.FiscalPeriod == "" && o.settings.DefaultPeriod != "" {
		req.FiscalPeriod = o.settings.DefaultPeriod
	}
	name, ok := naming.SuggestName(req)
	if !ok {
		p.Reason = "Unable to classify: " + p.OriginalName
		p.Err = services.Wrap(services.ErrUnclassified, stagePlanning, "suggest name", p.OriginalName, nil)
		logger.Info("classification decision",
			logging.Args(append(logging.DecisionAttrs("classification", string(classify.CategoryUnknown), "no rule matched"),
				logging.String(logging.FieldEventType, "file_unclassified"))...)...)
		return p
	}

	p.SuggestedName = name
	destDir := o.settings.TargetDir
	if o.settings.CreateSubfolders {
		p.CategoryFolder = naming.ResolveFolder(name)
		destDir = filepath.Join(destDir, p.CategoryFolder)
	}
	if o.settings.TargetDir != "" {
		p.Destination = filepath.Join(destDir, name)
	}

	attrs := logging.DecisionAttrs("classification", string(p.Classification.Category), p.Classification.Rule)
	attrs = append(attrs,
		logging.Float64("confidence", p.Classification.Confidence),
		logging.String("suggested_name", name),
		logging.Bool("text_used", p.TextUsed),
	)
	logger.Info("classification decision", logging.Args(attrs...)...)
	return p
}

// extractText returns the PDF text layer, or "" when extraction is disabled,
// unsupported for the file, or fails.
func (o *Organizer) extractText(ctx context.Context, path string) string {
	if o.text == nil || !pdftext.Supports(path) {
		return ""
	}
	text, err := o.text.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, services.ErrCanceled) {
			return ""
		}
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "text extraction failed", "text_extraction_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install poppler-utils or disable text_extraction"),
			logging.String(logging.FieldImpact, "classified from file name only"),
		)
		return ""
	}
	return text
}
