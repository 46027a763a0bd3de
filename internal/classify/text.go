package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"taxfiler/internal/textutil"
)

// Analysis holds the metadata recovered from one source (file name or PDF
// text). Empty fields mean the source said nothing.
type Analysis struct {
	CompanyName    string `json:"company_name,omitempty"`
	FiscalPeriod   string `json:"fiscal_period,omitempty"`
	SubmissionDate string `json:"submission_date,omitempty"`
}

const datePattern = `(\d{4}|(?:令和|平成)(?:\d{1,2}|元))年(\d{1,2})月(\d{1,2})日`

var (
	companyPattern    = regexp.MustCompile(`(?:株式会社|有限会社|合同会社|合資会社)[\s　]*[^\s　]+`)
	submissionPattern = regexp.MustCompile(`(?:提出日|申告日|作成日)[\s　:]*` + datePattern)
	fiscalYearPattern = regexp.MustCompile(`事業年度[\s　:]*(?:自[\s　]*)?` + datePattern + `[\s　~〜-]*(?:至[\s　]*)?` + datePattern)
)

// AnalyzeText scans extracted PDF text for the company name, submission date,
// and fiscal period. Full-width digits and colons are folded before matching.
func AnalyzeText(text string) Analysis {
	if strings.TrimSpace(text) == "" {
		return Analysis{}
	}
	text = textutil.FoldWidth(textutil.NormalizeName(text))

	var a Analysis
	if m := companyPattern.FindString(text); m != "" {
		a.CompanyName = textutil.CanonicalCompany(m)
	}
	if m := submissionPattern.FindStringSubmatch(text); m != nil {
		if year, ok := westernYear(m[1]); ok {
			if date, ok := formatDate(year, m[2], m[3]); ok {
				a.SubmissionDate = date
			}
		}
	}
	if m := fiscalYearPattern.FindStringSubmatch(text); m != nil {
		// m[4..6] is the closing date of the fiscal year.
		if year, ok := westernYear(m[4]); ok {
			if month, err := strconv.Atoi(m[5]); err == nil && month >= 1 && month <= 12 {
				a.FiscalPeriod = fmt.Sprintf("%02d%02d", year%100, month)
			}
		}
	}
	return a
}

// westernYear converts a four-digit year or a 令和/平成 era year.
func westernYear(value string) (int, bool) {
	base := 0
	switch {
	case strings.HasPrefix(value, "令和"):
		base = 2018
		value = strings.TrimPrefix(value, "令和")
	case strings.HasPrefix(value, "平成"):
		base = 1988
		value = strings.TrimPrefix(value, "平成")
	}
	if value == "元" {
		return base + 1, base != 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return base + n, true
}

func formatDate(year int, month, day string) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, m, d), true
}
