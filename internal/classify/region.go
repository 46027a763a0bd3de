package classify

import (
	"strings"
	"unicode/utf8"
)

var prefectureNames = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

// regionToken returns the leading segment of a label that may name a local
// government: the text before the first separator, cut again before 法人 when
// the region is written flush against the tax name.
func regionToken(label string) string {
	token := strings.TrimSpace(label)
	if idx := strings.IndexAny(token, " 　_"); idx >= 0 {
		token = token[:idx]
	}
	if idx := strings.Index(token, "法人"); idx > 0 {
		token = token[:idx]
	}
	return token
}

// splitRegion extracts a prefecture and municipality from the leading token of
// label. Either value may be empty.
func splitRegion(label string) (prefecture, municipality string) {
	token := regionToken(label)
	if token == "" {
		return "", ""
	}
	rest := token
	for _, name := range prefectureNames {
		if strings.HasPrefix(token, name) {
			prefecture = name
			rest = token[len(name):]
			break
		}
	}
	if isMunicipality(rest) {
		municipality = rest
	}
	return prefecture, municipality
}

func isMunicipality(token string) bool {
	if utf8.RuneCountInString(token) < 2 || strings.Contains(token, "税") {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(token)
	switch last {
	case '市', '区', '町', '村':
		return true
	default:
		return false
	}
}
