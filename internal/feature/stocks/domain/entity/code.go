package entity

import "strings"

// 市場区分
const (
	MarketShanghai = "sh"
	MarketShenzhen = "sz"
	MarketBeijing  = "bj"
)

// CleanCode はSZ/SH/BJの接頭辞（大文字小文字を問わない）を除き、6桁にゼロ埋めします。
func CleanCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	for _, prefix := range []string{"SZ", "SH", "BJ"} {
		if strings.HasPrefix(c, prefix) {
			c = c[len(prefix):]
			break
		}
	}
	c = strings.TrimPrefix(c, ".")
	if len(c) < 6 {
		c = strings.Repeat("0", 6-len(c)) + c
	}
	return c
}

// MarketOf は銘柄コードの市場を返します。6/9始まりは上海、4/8始まりは北京、それ以外は深圳です。
func MarketOf(code string) string {
	c := CleanCode(code)
	switch c[0] {
	case '6', '9':
		return MarketShanghai
	case '4', '8':
		return MarketBeijing
	default:
		return MarketShenzhen
	}
}

// SecID は東方財富のsecidを返します。上海は "1.<code>"、深圳・北京は "0.<code>" です。
func SecID(code string) string {
	c := CleanCode(code)
	if MarketOf(c) == MarketShanghai {
		return "1." + c
	}
	return "0." + c
}
