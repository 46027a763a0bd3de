package classify

import (
	"path/filepath"
	"strings"
)

const (
	// StructuredConfidence is reported whenever a file name follows the e-Tax
	// download layout, whether or not its label maps to a category.
	StructuredConfidence = 0.9
	// KeywordConfidence is reported for matches against the keyword table.
	KeywordConfidence = 0.8
)

// keywordRule matches a bare file name. All terms must appear; ext, when set,
// must equal the lower-cased extension.
type keywordRule struct {
	name     string
	category Category
	anyOf    []string
	allOf    []string
	ext      string
}

func (r keywordRule) matches(name, ext string) bool {
	if r.ext != "" && r.ext != ext {
		return false
	}
	for _, term := range r.allOf {
		if !strings.Contains(name, term) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return true
	}
	for _, term := range r.anyOf {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

// keywordRules is evaluated top to bottom; the first hit wins, so more
// specific phrases sit above the phrases they contain (勘定科目別税区分集計表
// before 税区分集計表).
var keywordRules = []keywordRule{
	{name: "receipt_notice", category: CategoryReceiptNotice, anyOf: []string{"受信通知"}},
	// 脳情報 is a common OCR misreading of 納付情報 on scanned downloads.
	{name: "payment_info", category: CategoryPaymentInfo, anyOf: []string{"納付情報", "脳情報"}},
	{name: "financial_statement", category: CategoryFinancialStatement, anyOf: []string{"決算書"}},
	{name: "general_ledger", category: CategoryGeneralLedger, anyOf: []string{"総勘定元帳"}},
	{name: "subsidiary_ledger", category: CategorySubsidiaryLedger, anyOf: []string{"補助元帳"}},
	{name: "trial_balance", category: CategoryTrialBalance, anyOf: []string{"残高試算表", "貸借対照表", "損益計算書"}},
	{name: "journal", category: CategoryJournal, anyOf: []string{"仕訳帳"}, ext: ".pdf"},
	{name: "journal_data", category: CategoryJournalData, anyOf: []string{"仕訳"}, ext: ".csv"},
	{name: "fixed_asset", category: CategoryFixedAsset, anyOf: []string{"固定資産台帳"}},
	{name: "bulk_depreciation", category: CategoryBulkDepreciation, anyOf: []string{"一括償却資産"}},
	{name: "small_amount_asset", category: CategorySmallAmountAsset, anyOf: []string{"少額"}},
	{name: "tax_classification_by_account", category: CategoryTaxClassificationByAccount, anyOf: []string{"勘定科目別税区分集計表"}},
	{name: "tax_classification", category: CategoryTaxClassification, anyOf: []string{"税区分集計表"}},
	{name: "corporate_tax_attachment", category: CategoryCorporateTaxAttachment, allOf: []string{"イメージ添付書類", "法人税申告"}},
	{name: "consumption_tax_attachment", category: CategoryConsumptionTaxAttachment, allOf: []string{"イメージ添付書類", "法人消費税申告"}},
	{name: "tax_payment_list", category: CategoryTaxPaymentList, anyOf: []string{"納税一覧"}},
}

// matchKeyword returns the first keyword rule hit for a bare file name.
func matchKeyword(name string) (keywordRule, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, rule := range keywordRules {
		if rule.matches(name, ext) {
			return rule, true
		}
	}
	return keywordRule{}, false
}

// structuredLabel maps the label segment of an e-Tax file name to a category.
// Prefectural and municipal labels also yield the region written in front of
// the tax name.
func structuredLabel(label string) (category Category, prefecture, municipality string) {
	switch {
	case strings.Contains(label, "法人税及び地方法人税申告書"):
		return CategoryCorporateTax, "", ""
	case strings.Contains(label, "消費税申告書"):
		return CategoryConsumptionTax, "", ""
	case strings.Contains(label, "都道府県民税"), strings.Contains(label, "事業税"):
		pref, _ := splitRegion(label)
		return CategoryPrefecturalTax, pref, ""
	case strings.Contains(label, "市町村民税"), strings.Contains(label, "市民税"):
		pref, muni := splitRegion(label)
		return CategoryMunicipalTax, pref, muni
	case strings.Contains(label, "イメージ添付書類") && strings.Contains(label, "法人消費税申告"):
		return CategoryConsumptionTaxAttachment, "", ""
	case strings.Contains(label, "イメージ添付書類") && strings.Contains(label, "法人税申告"):
		return CategoryCorporateTaxAttachment, "", ""
	default:
		return CategoryUnknown, "", ""
	}
}
