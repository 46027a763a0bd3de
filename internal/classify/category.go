package classify

// Category identifies the kind of tax or accounting document a file holds.
type Category string

const (
	CategoryUnknown                    Category = "Unknown"
	CategoryCorporateTax               Category = "CorporateTax"
	CategoryCorporateTaxAttachment     Category = "CorporateTaxAttachment"
	CategoryReceiptNotice              Category = "ReceiptNotice"
	CategoryPaymentInfo                Category = "PaymentInfo"
	CategoryTaxPaymentList             Category = "TaxPaymentList"
	CategoryPrefecturalTax             Category = "PrefecturalTax"
	CategoryMunicipalTax               Category = "MunicipalTax"
	CategoryConsumptionTax             Category = "ConsumptionTax"
	CategoryConsumptionTaxAttachment   Category = "ConsumptionTaxAttachment"
	CategoryFinancialStatement         Category = "FinancialStatement"
	CategoryGeneralLedger              Category = "GeneralLedger"
	CategorySubsidiaryLedger           Category = "SubsidiaryLedger"
	CategoryTrialBalance               Category = "TrialBalance"
	CategoryJournal                    Category = "Journal"
	CategoryJournalData                Category = "JournalData"
	CategoryFixedAsset                 Category = "FixedAsset"
	CategoryBulkDepreciation           Category = "BulkDepreciation"
	CategorySmallAmountAsset           Category = "SmallAmountAsset"
	CategoryTaxClassification          Category = "TaxClassification"
	CategoryTaxClassificationByAccount Category = "TaxClassificationByAccount"
)

var allCategories = []Category{
	CategoryCorporateTax,
	CategoryCorporateTaxAttachment,
	CategoryReceiptNotice,
	CategoryPaymentInfo,
	CategoryTaxPaymentList,
	CategoryPrefecturalTax,
	CategoryMunicipalTax,
	CategoryConsumptionTax,
	CategoryConsumptionTaxAttachment,
	CategoryFinancialStatement,
	CategoryGeneralLedger,
	CategorySubsidiaryLedger,
	CategoryTrialBalance,
	CategoryJournal,
	CategoryJournalData,
	CategoryFixedAsset,
	CategoryBulkDepreciation,
	CategorySmallAmountAsset,
	CategoryTaxClassification,
	CategoryTaxClassificationByAccount,
}

// Categories returns every known category except Unknown, in filing order.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory resolves a category name. Unrecognized names map to Unknown.
func ParseCategory(name string) (Category, bool) {
	for _, c := range allCategories {
		if string(c) == name {
			return c, true
		}
	}
	if name == string(CategoryUnknown) {
		return CategoryUnknown, true
	}
	return CategoryUnknown, false
}

func (c Category) String() string {
	if c == "" {
		return string(CategoryUnknown)
	}
	return string(c)
}

// Known reports whether c is a concrete document category.
func (c Category) Known() bool {
	return c != "" && c != CategoryUnknown
}
