package classify_test

import (
	"testing"

	"taxfiler/internal/classify"
)

func TestClassifyStructuredCorporateTax(t *testing.T) {
	res := classify.Classify("法人税及び地方法人税申告書_20240731テスト会社株式会社_20250720130102.pdf", "")

	if res.Category != classify.CategoryCorporateTax {
		t.Fatalf("category = %s, want CorporateTax", res.Category)
	}
	if res.CompanyName != "テスト会社株式会社" {
		t.Fatalf("company = %q", res.CompanyName)
	}
	if res.FiscalPeriod != "2407" {
		t.Fatalf("period = %q, want 2407", res.FiscalPeriod)
	}
	if res.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", res.Confidence)
	}
	if res.Rule != classify.RuleStructured {
		t.Fatalf("rule = %q", res.Rule)
	}
}

func TestClassifyStructuredLabels(t *testing.T) {
	cases := []struct {
		name         string
		file         string
		category     classify.Category
		prefecture   string
		municipality string
	}{
		{
			name:     "consumption",
			file:     "消費税申告書_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryConsumptionTax,
		},
		{
			name:       "prefectural with region",
			file:       "東京都 法人都道府県民税事業税_20240331サンプル商事_20240520101010.pdf",
			category:   classify.CategoryPrefecturalTax,
			prefecture: "東京都",
		},
		{
			name:       "prefectural flush region",
			file:       "愛知県法人事業税_20240331サンプル商事_20240520101010.pdf",
			category:   classify.CategoryPrefecturalTax,
			prefecture: "愛知県",
		},
		{
			name:     "prefectural without region",
			file:     "都道府県民税_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryPrefecturalTax,
		},
		{
			name:         "municipal with city",
			file:         "蒲郡市　法人市民税_20240331サンプル商事_20240520101010.pdf",
			category:     classify.CategoryMunicipalTax,
			municipality: "蒲郡市",
		},
		{
			name:         "municipal with prefecture and city",
			file:         "福岡県福岡市法人市民税_20240331サンプル商事_20240520101010.pdf",
			category:     classify.CategoryMunicipalTax,
			prefecture:   "福岡県",
			municipality: "福岡市",
		},
		{
			name:     "municipal generic",
			file:     "市町村民税_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryMunicipalTax,
		},
		{
			name:     "corporate attachment",
			file:     "イメージ添付書類(法人税申告)_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryCorporateTaxAttachment,
		},
		{
			name:     "consumption attachment",
			file:     "イメージ添付書類(法人消費税申告)_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryConsumptionTaxAttachment,
		},
		{
			name:     "unknown label keeps structure confidence",
			file:     "源泉所得税_20240331サンプル商事_20240520101010.pdf",
			category: classify.CategoryUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := classify.Classify(tc.file, "")
			if res.Category != tc.category {
				t.Fatalf("category = %s, want %s", res.Category, tc.category)
			}
			if res.Prefecture != tc.prefecture {
				t.Fatalf("prefecture = %q, want %q", res.Prefecture, tc.prefecture)
			}
			if res.Municipality != tc.municipality {
				t.Fatalf("municipality = %q, want %q", res.Municipality, tc.municipality)
			}
			if res.Confidence != classify.StructuredConfidence {
				t.Fatalf("confidence = %v, want %v", res.Confidence, classify.StructuredConfidence)
			}
			if res.FiscalPeriod != "2403" || len(res.FiscalPeriod) != 4 {
				t.Fatalf("period = %q, want 2403", res.FiscalPeriod)
			}
			if res.CompanyName != "サンプル商事" {
				t.Fatalf("company = %q", res.CompanyName)
			}
		})
	}
}

func TestClassifyStripsCompanyWhitespace(t *testing.T) {
	res := classify.Classify("法人税及び地方法人税申告書_20240731テスト 会社　株式会社_20250720130102.pdf", "")
	if res.CompanyName != "テスト会社株式会社" {
		t.Fatalf("company = %q", res.CompanyName)
	}
}

func TestClassifyKeywordRules(t *testing.T) {
	cases := []struct {
		file     string
		category classify.Category
	}{
		{"法人税　受信通知.pdf", classify.CategoryReceiptNotice},
		{"納付情報発行結果.pdf", classify.CategoryPaymentInfo},
		{"脳情報発行結果.pdf", classify.CategoryPaymentInfo},
		{"第5期決算書.pdf", classify.CategoryFinancialStatement},
		{"総勘定元帳_2024.pdf", classify.CategoryGeneralLedger},
		{"補助元帳.pdf", classify.CategorySubsidiaryLedger},
		{"残高試算表.pdf", classify.CategoryTrialBalance},
		{"貸借対照表.pdf", classify.CategoryTrialBalance},
		{"損益計算書.pdf", classify.CategoryTrialBalance},
		{"仕訳帳.pdf", classify.CategoryJournal},
		{"仕訳データ.csv", classify.CategoryJournalData},
		{"仕訳帳.CSV", classify.CategoryJournalData},
		{"固定資産台帳.pdf", classify.CategoryFixedAsset},
		{"一括償却資産明細表.pdf", classify.CategoryBulkDepreciation},
		{"少額減価償却資産明細表.pdf", classify.CategorySmallAmountAsset},
		{"勘定科目別税区分集計表.pdf", classify.CategoryTaxClassificationByAccount},
		{"税区分集計表.pdf", classify.CategoryTaxClassification},
		{"イメージ添付書類 法人税申告.pdf", classify.CategoryCorporateTaxAttachment},
		{"イメージ添付書類 法人消費税申告.pdf", classify.CategoryConsumptionTaxAttachment},
		{"納税一覧.pdf", classify.CategoryTaxPaymentList},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			res := classify.Classify(tc.file, "")
			if res.Category != tc.category {
				t.Fatalf("category = %s, want %s", res.Category, tc.category)
			}
			if res.Confidence != classify.KeywordConfidence {
				t.Fatalf("confidence = %v, want 0.8", res.Confidence)
			}
			if res.FiscalPeriod != "" {
				t.Fatalf("expected no period from keyword match, got %q", res.FiscalPeriod)
			}
		})
	}
}

func TestClassifyKeywordOrderFirstMatchWins(t *testing.T) {
	// Both 受信通知 and 納付情報 appear; the receipt notice rule is listed first.
	res := classify.Classify("納付情報_受信通知.pdf", "")
	if res.Category != classify.CategoryReceiptNotice {
		t.Fatalf("category = %s, want ReceiptNotice", res.Category)
	}
}

func TestClassifyUnknown(t *testing.T) {
	for _, name := range []string{"", "   ", "random.pdf", "invoice_2024.csv", "仕訳帳.txt"} {
		res := classify.Classify(name, "")
		if res.Category != classify.CategoryUnknown {
			t.Fatalf("Classify(%q) category = %s, want Unknown", name, res.Category)
		}
		if res.Confidence != 0 {
			t.Fatalf("Classify(%q) confidence = %v, want 0", name, res.Confidence)
		}
	}
}

func TestClassifyUsesBaseName(t *testing.T) {
	res := classify.Classify("/srv/受信通知/random.pdf", "")
	if res.Category != classify.CategoryUnknown {
		t.Fatalf("expected directory names to be ignored, got %s", res.Category)
	}
}

func TestClassifyNormalizesDecomposedNames(t *testing.T) {
	// 仕訳データ.csv with デ written as テ + combining dakuten.
	res := classify.Classify("\u4ed5\u8a33\u30c6\u3099\u30fc\u30bf.csv", "")
	if res.Category != classify.CategoryJournalData {
		t.Fatalf("category = %s, want JournalData", res.Category)
	}
}

func TestClassifyTextFillsGaps(t *testing.T) {
	text := "法人税申告書\n株式会社サンプル 御中\n提出日：令和6年5月20日\n事業年度 自 2023年4月1日 至 2024年3月31日\n"
	res := classify.Classify("決算書.pdf", text)

	if res.Category != classify.CategoryFinancialStatement {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Confidence != classify.KeywordConfidence {
		t.Fatalf("text must not change confidence, got %v", res.Confidence)
	}
	if res.CompanyName != "株式会社サンプル" {
		t.Fatalf("company = %q", res.CompanyName)
	}
	if res.SubmissionDate != "2024-05-20" {
		t.Fatalf("submission date = %q", res.SubmissionDate)
	}
	if res.FiscalPeriod != "2403" {
		t.Fatalf("period = %q, want 2403", res.FiscalPeriod)
	}
}

func TestClassifyFileNameWinsOverText(t *testing.T) {
	text := "株式会社ベツメイ\n事業年度 自 2022年1月1日 至 2022年12月31日"
	res := classify.Classify("法人税及び地方法人税申告書_20240731テスト会社株式会社_20250720130102.pdf", text)
	if res.CompanyName != "テスト会社株式会社" {
		t.Fatalf("company = %q, want file name value", res.CompanyName)
	}
	if res.FiscalPeriod != "2407" {
		t.Fatalf("period = %q, want file name value", res.FiscalPeriod)
	}
}

func TestClassifyTextNeverSetsCategory(t *testing.T) {
	res := classify.Classify("scan001.pdf", "法人税及び地方法人税申告書\n株式会社サンプル")
	if res.Category != classify.CategoryUnknown || res.Confidence != 0 {
		t.Fatalf("expected Unknown/0, got %s/%v", res.Category, res.Confidence)
	}
	if res.CompanyName != "株式会社サンプル" {
		t.Fatalf("expected metadata still filled, got %q", res.CompanyName)
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := classify.ParseCategory("MunicipalTax"); !ok || c != classify.CategoryMunicipalTax {
		t.Fatalf("ParseCategory(MunicipalTax) = %s, %v", c, ok)
	}
	if c, ok := classify.ParseCategory("Bogus"); ok || c != classify.CategoryUnknown {
		t.Fatalf("ParseCategory(Bogus) = %s, %v", c, ok)
	}
	for _, c := range classify.Categories() {
		if !c.Known() {
			t.Fatalf("Categories() contains unknown entry %q", c)
		}
	}
}
