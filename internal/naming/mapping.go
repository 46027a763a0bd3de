package naming

import "taxfiler/internal/classify"

// Entry is one row of the canonical naming table.
type Entry struct {
	Prefix    string
	Label     string
	Extension string
}

const (
	extPDF = ".pdf"
	extCSV = ".csv"
)

var mapping = map[classify.Category]Entry{
	classify.CategoryTaxPaymentList:             {Prefix: "0000", Label: "納付税額一覧表", Extension: extPDF},
	classify.CategoryCorporateTax:               {Prefix: "0001", Label: "法人税及び地方法人税申告書", Extension: extPDF},
	classify.CategoryCorporateTaxAttachment:     {Prefix: "0002", Label: "添付資料", Extension: extPDF},
	classify.CategoryReceiptNotice:              {Prefix: "0003", Label: "受信通知", Extension: extPDF},
	classify.CategoryPaymentInfo:                {Prefix: "0004", Label: "納付情報", Extension: extPDF},
	classify.CategoryPrefecturalTax:             {Prefix: "1000", Label: "都道府県税申告書", Extension: extPDF},
	classify.CategoryMunicipalTax:               {Prefix: "2000", Label: "市民税申告書", Extension: extPDF},
	classify.CategoryConsumptionTax:             {Prefix: "3001", Label: "消費税及び地方消費税申告書", Extension: extPDF},
	classify.CategoryConsumptionTaxAttachment:   {Prefix: "3002", Label: "添付資料", Extension: extPDF},
	classify.CategoryFinancialStatement:         {Prefix: "5001", Label: "決算書", Extension: extPDF},
	classify.CategoryGeneralLedger:              {Prefix: "5002", Label: "総勘定元帳", Extension: extPDF},
	classify.CategorySubsidiaryLedger:           {Prefix: "5003", Label: "補助元帳", Extension: extPDF},
	classify.CategoryTrialBalance:               {Prefix: "5004", Label: "残高試算表", Extension: extPDF},
	classify.CategoryJournal:                    {Prefix: "5005", Label: "仕訳帳", Extension: extPDF},
	classify.CategoryJournalData:                {Prefix: "5006", Label: "仕訳データ", Extension: extCSV},
	classify.CategoryFixedAsset:                 {Prefix: "6001", Label: "固定資産台帳", Extension: extPDF},
	classify.CategoryBulkDepreciation:           {Prefix: "6002", Label: "一括償却資産明細表", Extension: extPDF},
	classify.CategorySmallAmountAsset:           {Prefix: "6003", Label: "少額減価償却資産明細表", Extension: extPDF},
	classify.CategoryTaxClassification:          {Prefix: "7001", Label: "税区分集計表", Extension: extPDF},
	classify.CategoryTaxClassificationByAccount: {Prefix: "7002", Label: "勘定科目別税区分集計表", Extension: extPDF},
}

// Prefectures and municipalities with a dedicated prefix. Regions not listed
// fall back to the category's generic prefix.
var (
	prefecturePrefixes = map[string]string{
		"東京都": "1011",
		"愛知県": "1021",
		"福岡県": "1031",
	}
	municipalityPrefixes = map[string]string{
		"蒲郡市": "2001",
		"福岡市": "2011",
	}
)

const (
	prefecturalRegionLabel = "法人都道府県民税事業税"
	municipalRegionLabel   = "法人市民税"
)

// Lookup returns the naming table row for a category.
func Lookup(category classify.Category) (Entry, bool) {
	entry, ok := mapping[category]
	return entry, ok
}
