package generate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	introPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(Xin chào!?\s*)?(Tôi|Mình) là (MyU Bot|trợ lý tuyển sinh)[^\n]*\.?\s*`),
		regexp.MustCompile(`(?i)^Chào bạn!?\s*(Tôi|Mình) là[^\n]*\.?\s*`),
		regexp.MustCompile(`(?i)^(Tôi|Mình) là trợ lý[^\n]*\.?\s*`),
	}
	lineNoise = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^🎉\s*CÂU HỎI HIỆN TẠI:.*$`),
		regexp.MustCompile(`(?im)^❓\s*CÂU HỎI HIỆN TẠI.*$`),
		regexp.MustCompile(`(?im)^🇻🇳\s*TRẢ LỜI.*$`),
		regexp.MustCompile(`(?im)^👍\s*CHÚC MỪNG!?\s*$`),
		regexp.MustCompile(`(?im)^🎯.*$`),
		regexp.MustCompile(`(?im)^Trả lời:\s*$`),
	}
	preambleRe     = regexp.MustCompile(`(?i)^Về câu hỏi của bạn,?\s*`)
	personalityRe  = regexp.MustCompile(`(?i)Để định hướng nghề nghiệp cho bạn, tôi sẽ phân tích tính cách của bạn\.[^\n]*\n*`)
	personaListRe  = regexp.MustCompile(`(?i)Bạn có thể là người:\s*\n(•[^\n]*\n)*`)
	emojiOnlyRe    = regexp.MustCompile(`^(🎉|❓|🇻🇳|👍|🎯)+\s*$`)
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)
	echoedPrefixes = []string{"câu hỏi của người dùng:", "câu hỏi:"}
)

// Clean strips boilerplate the model tends to add around an answer: leading
// self-introductions, template echo lines, emoji-only lines, lines repeating
// the question, and runs of blank lines.
func Clean(text, question string) string {
	for _, re := range introPatterns {
		text = re.ReplaceAllString(text, "")
	}
	for _, re := range lineNoise {
		text = re.ReplaceAllString(text, "")
	}
	text = preambleRe.ReplaceAllString(text, "")
	text = personalityRe.ReplaceAllString(text, "")
	text = personaListRe.ReplaceAllString(text, "")

	q := strings.ToLower(question)
	qLen := utf8.RuneCountInString(q)
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if emojiOnlyRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(line))
		if q != "" && strings.Contains(lower, q) && utf8.RuneCountInString(lower) < qLen+20 {
			continue
		}
		if hasAnyPrefix(lower, echoedPrefixes) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	return blankRunsRe.ReplaceAllString(out, "\n\n")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
