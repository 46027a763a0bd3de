package naming

import "strconv"

// OtherFolder receives names without a recognizable prefix.
const OtherFolder = "その他"

type folderRange struct {
	upper int
	label string
}

// folderRanges are half-open [previous upper, upper) bands starting at 0.
var folderRanges = []folderRange{
	{1000, "0000番台_法人税"},
	{2000, "1000番台_都道府県税"},
	{3000, "2000番台_市民税"},
	{4000, "3000番台_消費税"},
	{5000, "4000番台_事業所税"},
	{6000, "5000番台_決算書類"},
	{7000, "6000番台_固定資産"},
	{8000, "7000番台_税区分集計表"},
}

// ResolveFolder maps the leading four digits of a canonical name to its
// category folder. Names shorter than four characters, or whose first four
// characters are not all ASCII digits, go to OtherFolder, as do prefixes of
// 8000 and above.
func ResolveFolder(canonicalName string) string {
	if len(canonicalName) < 4 {
		return OtherFolder
	}
	head := canonicalName[:4]
	for i := 0; i < len(head); i++ {
		if head[i] < '0' || head[i] > '9' {
			return OtherFolder
		}
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return OtherFolder
	}
	for _, r := range folderRanges {
		if n < r.upper {
			return r.label
		}
	}
	return OtherFolder
}

// Folders lists every folder label ResolveFolder can return, in prefix order.
func Folders() []string {
	out := make([]string, 0, len(folderRanges)+1)
	for _, r := range folderRanges {
		out = append(out, r.label)
	}
	return append(out, OtherFolder)
}
