package intent

import (
	"regexp"
	"unicode/utf8"
)

var (
	shortSearchRe = regexp.MustCompile(`(?i)tìm|search|thông tin|là gì`)

	searchFamilies = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tìm kiếm|search|google|tra cứu`),
		regexp.MustCompile(`(?i)thông tin về|thông tin chi tiết`),
		regexp.MustCompile(`(?i)tìm hiểu|tìm được|tìm cho`),
		regexp.MustCompile(`(?i)tin tức|sự kiện|diễn ra|xảy ra`),
		regexp.MustCompile(`(?i)mới nhất|cập nhật|hiện tại|bây giờ`),
		regexp.MustCompile(`(?i)ở đâu|địa chỉ|nằm ở|tọa lạc`),
		regexp.MustCompile(`(?i)quán|nhà hàng|cà phê|shop|cửa hàng`),
		regexp.MustCompile(`(?i)khi nào|thời gian|ngày|giờ mở cửa`),
		regexp.MustCompile(`(?i)lịch trình|kế hoạch`),
		regexp.MustCompile(`(?i)ai là|người nào|tổ chức nào`),
		regexp.MustCompile(`(?i)công ty|doanh nghiệp|trường học`),
		regexp.MustCompile(`(?i)giải thích|định nghĩa|là gì|nghĩa là gì`),
		regexp.MustCompile(`(?i)cách thức|làm thế nào|how to`),
	}
)

const shortMessageRunes = 20

// WantsWebSearch decides whether a companion-chat message should be grounded
// on a web search. Short messages are usually small talk and only search on an
// explicit request.
func WantsWebSearch(text string) bool {
	if utf8.RuneCountInString(text) < shortMessageRunes {
		return shortSearchRe.MatchString(text)
	}
	for _, re := range searchFamilies {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
