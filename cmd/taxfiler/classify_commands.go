package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taxfiler/internal/classify"
	"taxfiler/internal/logging"
	"taxfiler/internal/naming"
	"taxfiler/internal/pdftext"
)

type classifyOutput struct {
	File           string          `json:"file"`
	Classification classify.Result `json:"classification"`
	SuggestedName  string          `json:"suggested_name,omitempty"`
	CategoryFolder string          `json:"category_folder,omitempty"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var useText bool

	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Show the detected category and metadata for file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor, err := ctx.textExtractor(useText)
			if err != nil {
				return err
			}
			outputs := make([]classifyOutput, 0, len(args))
			for _, arg := range args {
				text := ""
				if extractor != nil && pdftext.Supports(arg) {
					extracted, err := extractor.Extract(cmd.Context(), arg)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s: %v\n", arg, err)
					}
					text = extracted
				}
				res := classify.Classify(filepath.Base(arg), text)
				out := classifyOutput{File: arg, Classification: res}
				if name, ok := naming.SuggestName(naming.RequestFrom(res)); ok {
					out.SuggestedName = name
					out.CategoryFolder = naming.ResolveFolder(name)
				}
				outputs = append(outputs, out)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, outputs)
			}
			rows := make([][]string, 0, len(outputs))
			for _, out := range outputs {
				res := out.Classification
				rows = append(rows, []string{
					filepath.Base(out.File),
					string(res.Category),
					formatConfidence(res.Confidence),
					dash(res.CompanyName),
					dash(res.FiscalPeriod),
					dash(strings.TrimSpace(res.Prefecture + res.Municipality)),
					dash(res.Rule),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Category", "Confidence", "Company", "Period", "Region", "Rule"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&useText, "text", false, "Also read PDF text with pdftotext to fill missing metadata")
	return cmd
}

// textExtractor returns a pdftotext extractor when requested. It fails when
// text extraction is disabled in the configuration.
func (c *commandContext) textExtractor(requested bool) (*pdftext.Extractor, error) {
	if !requested {
		return nil, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.TextExtraction.Enabled {
		return nil, errors.New("text extraction is disabled (set text_extraction.enabled = true)")
	}
	return pdftext.New(cfg.PdftotextBinary(), time.Duration(cfg.TextExtraction.TimeoutSeconds)*time.Second), nil
}

type suggestOutput struct {
	File           string `json:"file,omitempty"`
	Category       string `json:"category"`
	SuggestedName  string `json:"suggested_name,omitempty"`
	CategoryFolder string `json:"category_folder,omitempty"`
	Error          string `json:"error,omitempty"`
}

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	var req struct {
		category     string
		company      string
		period       string
		prefecture   string
		municipality string
	}

	cmd := &cobra.Command{
		Use:   "suggest [FILE...]",
		Short: "Suggest canonical names for files or for an explicit category",
		Long: "With file arguments, classifies each name and prints its canonical name.\n" +
			"With --category, builds the name from the given fields instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var outputs []suggestOutput
			switch {
			case req.category != "":
				category, ok := classify.ParseCategory(req.category)
				if !ok {
					return fmt.Errorf("unknown category %q (known: %s)", req.category, categoryList())
				}
				outputs = append(outputs, suggestFor("", naming.Request{
					Category:     category,
					CompanyName:  req.company,
					FiscalPeriod: req.period,
					Prefecture:   req.prefecture,
					Municipality: req.municipality,
				}))
			case len(args) > 0:
				for _, arg := range args {
					res := classify.Classify(arg, "")
					outputs = append(outputs, suggestFor(arg, naming.RequestFrom(res)))
				}
			default:
				return errors.New("provide FILE arguments or --category")
			}

			logger, _ := ctx.ensureLogger()
			for _, out := range outputs {
				if out.SuggestedName == "" && logger != nil {
					logger.Debug("no filing name", logging.Args(logging.DecisionAttrs("naming", out.Category, out.Error)...)...)
				}
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, outputs)
			}
			rows := make([][]string, 0, len(outputs))
			for _, out := range outputs {
				name := out.SuggestedName
				if name == "" {
					name = "(" + out.Error + ")"
				}
				rows = append(rows, []string{dash(filepath.Base(out.File)), out.Category, name, dash(out.CategoryFolder)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Category", "Suggested name", "Folder"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.category, "category", "", "Category name such as CorporateTax or MunicipalTax")
	cmd.Flags().StringVar(&req.company, "company", "", "Company name")
	cmd.Flags().StringVar(&req.period, "period", "", "Fiscal period as YYMM")
	cmd.Flags().StringVar(&req.prefecture, "prefecture", "", "Prefecture for prefectural filings")
	cmd.Flags().StringVar(&req.municipality, "municipality", "", "Municipality for municipal filings")
	return cmd
}

func suggestFor(file string, req naming.Request) suggestOutput {
	out := suggestOutput{File: file, Category: string(req.Category)}
	name, ok := naming.SuggestName(req)
	if !ok {
		out.Error = "unclassified"
		return out
	}
	out.SuggestedName = name
	out.CategoryFolder = naming.ResolveFolder(name)
	return out
}

func categoryList() string {
	names := make([]string, 0, len(classify.Categories()))
	for _, c := range classify.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func newFolderCommand(ctx *commandContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:         "folder [NAME...]",
		Short:       "Show the category folder a canonical name is filed into",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				folders := naming.Folders()
				if ctx.JSONMode() {
					return writeJSON(cmd, folders)
				}
				for _, f := range folders {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			}
			if len(args) == 0 {
				return errors.New("provide canonical names or --list")
			}
			type folderOutput struct {
				Name   string `json:"name"`
				Folder string `json:"folder"`
			}
			outputs := make([]folderOutput, 0, len(args))
			rows := make([][]string, 0, len(args))
			for _, name := range args {
				folder := naming.ResolveFolder(name)
				outputs = append(outputs, folderOutput{Name: name, Folder: folder})
				rows = append(rows, []string{name, folder})
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, outputs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Folder"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List every category folder")
	return cmd
}
