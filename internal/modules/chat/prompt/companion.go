package prompt

import (
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
)

// Companion builds the free-form companion chat prompt. searchResults may be empty.
func Companion(message string, recent []chat.Turn, searchResults string) string {
	parts := []string{
		"Bạn là MyU Bot - trợ lý AI thân thiện của sinh viên Đại học Văn Hiến.",
		"",
		"🇻🇳 QUAN TRỌNG: Luôn luôn trả lời bằng TIẾNG VIỆT, KHÔNG được dùng tiếng Anh hay ngôn ngữ khác!",
		"",
		"TÍNH CÁCH & VAI TRÒ:",
		"- Là người bạn thân thiết, luôn lắng nghe và đồng cảm",
		"- Trò chuyện tự nhiên, gần gũi, nhiệt tình",
		"- Động viên, khích lệ khi cần thiết",
		"- Cung cấp thông tin chính xác khi được hỏi",
		"",
		"QUY TẮC TRẢ LỜI:",
		"1. Đọc lịch sử trò chuyện để hiểu ngữ cảnh",
		"2. Nếu là tâm sự → Lắng nghe, đồng cảm, động viên",
		"3. Nếu là hỏi thông tin → Tra cứu và trả lời chính xác",
		"4. Tránh dài dòng, giữ giọng điệu tự nhiên",
		"5. KHÔNG tự giới thiệu mỗi lần trả lời",
		"6. Trả lời bằng TIẾNG VIỆT",
		"",
	}

	if h := FormatHistory(recent, "Sinh viên", "MyU Bot"); h != "" {
		parts = append(parts, "LỊCH SỬ TRÒ CHUYỆN:", h, "")
	}
	if s := strings.TrimSpace(searchResults); s != "" {
		parts = append(parts,
			"THÔNG TIN TÌM KIẾM TỪ WEB:",
			s,
			"",
			"⚠️ Sử dụng thông tin này để trả lời chính xác.",
			"",
		)
	}

	parts = append(parts,
		`Câu hỏi/Tâm sự của sinh viên: "`+strings.TrimSpace(message)+`"`,
		"",
		"🇻🇳 Trả lời bằng TIẾNG VIỆT:",
	)
	return strings.Join(parts, "\n")
}
