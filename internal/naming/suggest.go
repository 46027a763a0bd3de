package naming

import (
	"taxfiler/internal/classify"
	"taxfiler/internal/textutil"
)

// UnknownPeriod stands in for a fiscal period that could not be determined.
const UnknownPeriod = "XXXX"

// Request carries the classification fields a canonical name is built from.
type Request struct {
	Category     classify.Category
	CompanyName  string
	FiscalPeriod string
	Prefecture   string
	Municipality string
}

// RequestFrom copies the naming inputs out of a classification result.
func RequestFrom(res classify.Result) Request {
	return Request{
		Category:     res.Category,
		CompanyName:  res.CompanyName,
		FiscalPeriod: res.FiscalPeriod,
		Prefecture:   res.Prefecture,
		Municipality: res.Municipality,
	}
}

// SuggestName builds the canonical file name for req. It reports false when
// the category is Unknown or has no row in the naming table.
//
// Prefectural and municipal filings that carry a region name are labelled
// with it, and use the region's dedicated prefix when one exists.
func SuggestName(req Request) (string, bool) {
	entry, ok := mapping[req.Category]
	if !ok {
		return "", false
	}

	prefix, label := entry.Prefix, entry.Label
	switch req.Category {
	case classify.CategoryPrefecturalTax:
		if region := textutil.SanitizeFileName(req.Prefecture); region != "" {
			prefix = regionPrefix(prefecturePrefixes, region, entry.Prefix)
			label = region + "_" + prefecturalRegionLabel
		}
	case classify.CategoryMunicipalTax:
		region := textutil.SanitizeFileName(req.Municipality)
		if region == "" {
			region = textutil.SanitizeFileName(req.Prefecture)
		}
		if region != "" {
			prefix = regionPrefix(municipalityPrefixes, region, entry.Prefix)
			label = region + "_" + municipalRegionLabel
		}
	}

	return prefix + "_" + label + "_" + period(req.FiscalPeriod) + entry.Extension, true
}

func regionPrefix(table map[string]string, region, fallback string) string {
	if p, ok := table[region]; ok {
		return p
	}
	return fallback
}

func period(value string) string {
	value = textutil.SanitizeFileName(textutil.FoldWidth(value))
	if value == "" {
		return UnknownPeriod
	}
	return value
}
