package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"taxfiler/internal/textutil"
)

// Result is the outcome of classifying one file. Confidence is 0.9 for
// structured e-Tax names, 0.8 for keyword matches, and 0 when nothing matched.
type Result struct {
	Category       Category `json:"category"`
	CompanyName    string   `json:"company_name,omitempty"`
	FiscalPeriod   string   `json:"fiscal_period,omitempty"`
	Prefecture     string   `json:"prefecture,omitempty"`
	Municipality   string   `json:"municipality,omitempty"`
	SubmissionDate string   `json:"submission_date,omitempty"`
	Confidence     float64  `json:"confidence"`
	Rule           string   `json:"rule,omitempty"`
}

// RuleStructured names the e-Tax file name layout match in Result.Rule.
const RuleStructured = "etax_structured"

// structuredPattern is the e-Tax/eLTAX download layout:
// {label}_{YYYYMMDD}{company}_{YYYYMMDDhhmmss}.pdf
var structuredPattern = regexp.MustCompile(`^(.+?)_(\d{8})(.+?)_(\d{14})(?i:\.pdf)$`)

// Classify determines the category and metadata of a document from its file
// name and, optionally, text extracted from its contents. It never fails:
// unrecognized input yields CategoryUnknown with zero confidence. Only the
// base name of fileName is examined.
func Classify(fileName, extractedText string) Result {
	res := classifyName(fileName)
	if strings.TrimSpace(extractedText) != "" {
		res = res.fill(AnalyzeText(extractedText))
	}
	return res
}

func classifyName(fileName string) Result {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return Result{Category: CategoryUnknown}
	}
	name = textutil.NormalizeName(filepath.Base(name))

	if m := structuredPattern.FindStringSubmatch(name); m != nil {
		label, date, company := m[1], m[2], m[3]
		category, pref, muni := structuredLabel(label)
		return Result{
			Category:     category,
			CompanyName:  textutil.CanonicalCompany(company),
			FiscalPeriod: date[2:4] + date[4:6],
			Prefecture:   pref,
			Municipality: muni,
			Confidence:   StructuredConfidence,
			Rule:         RuleStructured,
		}
	}

	if rule, ok := matchKeyword(name); ok {
		return Result{
			Category:   rule.category,
			Confidence: KeywordConfidence,
			Rule:       "keyword:" + rule.name,
		}
	}
	return Result{Category: CategoryUnknown}
}

// fill copies text-derived metadata into fields the file name left empty.
// Category and confidence always come from the file name.
func (r Result) fill(a Analysis) Result {
	if r.CompanyName == "" {
		r.CompanyName = a.CompanyName
	}
	if r.FiscalPeriod == "" {
		r.FiscalPeriod = a.FiscalPeriod
	}
	if r.SubmissionDate == "" {
		r.SubmissionDate = a.SubmissionDate
	}
	return r
}
