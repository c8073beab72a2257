package retrieval

import (
	"strings"
	"unicode/utf8"
)

const (
	minContextRunes    = 50
	sufficientLenRunes = 200
)

var domainKeywords = []string{
	"văn hiến",
	"vhu",
	"ngành",
	"tuyển sinh",
	"học phí",
	"địa chỉ",
	"chuyên ngành",
	"đào tạo",
	"tín chỉ",
	"cơ hội nghề nghiệp",
	"tổ hợp",
	"xét tuyển",
	"sinh viên",
	"mã ngành",
}

// Judge decides whether retrieved passages are good enough to answer from.
type Judge interface {
	Relevant(passages []Passage, query string) bool
}

// KeywordJudge accepts passages that mention a domain keyword or are long
// enough on their own. Anything under minContextRunes is rejected outright.
type KeywordJudge struct{}

func (KeywordJudge) Relevant(passages []Passage, _ string) bool {
	if len(passages) == 0 {
		return false
	}
	total := 0
	for _, p := range passages {
		total += utf8.RuneCountInString(p.Text)
	}
	if total < minContextRunes {
		return false
	}
	for _, p := range passages {
		lower := strings.ToLower(p.Text)
		for _, kw := range domainKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return total >= sufficientLenRunes
}
