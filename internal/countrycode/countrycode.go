// Package countrycode 把表格中的国家名映射为搜索引擎的国家限制代码（cr 参数）。
package countrycode

import "strings"

var codes = map[string]string{
	"argentina":            "AR",
	"australia":            "AU",
	"austria":              "AT",
	"bangladesh":           "BD",
	"belgium":              "BE",
	"brazil":               "BR",
	"canada":               "CA",
	"chile":                "CL",
	"china":                "CN",
	"colombia":             "CO",
	"czech republic":       "CZ",
	"denmark":              "DK",
	"egypt":                "EG",
	"finland":              "FI",
	"france":               "FR",
	"germany":              "DE",
	"ghana":                "GH",
	"greece":               "GR",
	"hong kong":            "HK",
	"hungary":              "HU",
	"india":                "IN",
	"indonesia":            "ID",
	"ireland":              "IE",
	"israel":               "IL",
	"italy":                "IT",
	"japan":                "JP",
	"kenya":                "KE",
	"malaysia":             "MY",
	"mexico":               "MX",
	"netherlands":          "NL",
	"new zealand":          "NZ",
	"nigeria":              "NG",
	"norway":               "NO",
	"pakistan":             "PK",
	"peru":                 "PE",
	"philippines":          "PH",
	"poland":               "PL",
	"portugal":             "PT",
	"romania":              "RO",
	"russia":               "RU",
	"saudi arabia":         "SA",
	"singapore":            "SG",
	"south africa":         "ZA",
	"south korea":          "KR",
	"spain":                "ES",
	"sweden":               "SE",
	"switzerland":          "CH",
	"taiwan":               "TW",
	"thailand":             "TH",
	"turkey":               "TR",
	"uganda":               "UG",
	"ukraine":              "UA",
	"united arab emirates": "AE",
	"united kingdom":       "UK",
	"united states":        "US",
	"usa":                  "US",
	"vietnam":              "VN",
}

// Lookup 返回国家对应的 cr 代码（如 countryUS），未知国家返回空字符串。
// 两个字母的输入视为国家代码本身。
func Lookup(country string) string {
	key := strings.ToLower(strings.TrimSpace(country))
	if key == "" {
		return ""
	}
	if code, ok := codes[key]; ok {
		return "country" + code
	}
	if len(key) == 2 && isLetter(key[0]) && isLetter(key[1]) {
		return "country" + strings.ToUpper(key)
	}
	return ""
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
