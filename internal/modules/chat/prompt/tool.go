package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolOutcome is the combined result of every tool intent run for one turn.
// Results is keyed by intent name; each value is a tool result or {"error": msg}.
type ToolOutcome struct {
	MultiIntent bool           `json:"multiIntent"`
	Results     map[string]any `json:"results"`
}

// ToolError is the per-intent entry used when the message lacks required data.
type ToolError struct {
	Error string `json:"error"`
}

// ToolResult builds the formatting prompt for computed tool output. The model
// only rephrases the JSON; it never computes.
func ToolResult(question string, out ToolOutcome) (string, error) {
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool outcome: %w", err)
	}

	parts := []string{
		"Bạn là trợ lý tuyển sinh Đại học Văn Hiến thân thiện. Dựa trên kết quả tính toán, hãy trả lời người dùng bằng TIẾNG VIỆT.",
		"",
		fmt.Sprintf("Câu hỏi: %q", strings.TrimSpace(question)),
		"",
		"Kết quả tính toán: " + string(raw),
		"",
		"⚠️ QUY TẮC BẮT BUỘC:",
		"- BẮT BUỘC sử dụng TIẾNG VIỆT để trả lời",
		"- NGHIÊM CẤM tự giới thiệu (\"Tôi là...\", \"Chào bạn...\")",
		"- NGHIÊM CẤM gợi ý sai (như tổ hợp 2 môn)",
		"- CHỈ trình bày kết quả từ dữ liệu tính toán phía trên",
		"- Nếu có NHIỀU kết quả (multiIntent: true), trình bày TẤT CẢ theo thứ tự logic",
		"- Phân tích JSON kết quả kỹ trước khi trả lời:",
		"  * Nếu có \"error\" → nói thiếu dữ liệu",
		"  * Nếu có \"totalScore\" hoặc \"combination\" → ĐÃ TÍNH ĐƯỢC, hiển thị kết quả",
		"  * KHÔNG được mâu thuẫn giữa việc hiển thị số liệu và nói \"không thể tính\"",
	}

	if len(out.Results) > 0 {
		parts = append(parts, "", "📋 CÁCH TRÌNH BÀY KẾT QUẢ:", "")
		if out.MultiIntent {
			parts = append(parts,
				"🔀 CÂU HỎI KẾT HỢP (có nhiều yêu cầu):",
				"- Trả lời ĐẦY ĐỦ tất cả yêu cầu",
				"- Phần 1: Tính điểm tổ hợp (nếu có calculate_score)",
				"- Phần 2: Kiểm tra đủ điểm vào ngành (nếu có check_eligibility)",
				"- Phần 3: Gợi ý tổ hợp khác (nếu có suggest_combinations)",
				"- KHÔNG bỏ sót bất kỳ phần nào!",
				"",
			)
		}
		parts = append(parts,
			"1. Nếu tính điểm tổ hợp (có calculate_score trong results):",
			"   - Nếu có trường \"error\" → nói thiếu thông tin",
			"   - Nếu có \"totalScore\" → hiển thị tên tổ hợp, điểm từng môn (📝), tổng điểm (✨ Tổng điểm: X/30), điểm TB (📈 Điểm TB: Y/10) và một câu nhận xét",
			"2. Nếu kiểm tra đủ điểm vào ngành:",
			"   - Kết luận ngay đầu (✅ ĐỦ ĐIỂM hoặc ❌ CHƯA ĐỦ ĐIỂM)",
			"   - Tên ngành, mã ngành, điểm của bạn so với điểm chuẩn và chênh lệch cụ thể",
			"   - Nếu ĐỦ: chúc mừng; nếu CHƯA ĐỦ: động viên và gợi ý ngành khác",
			"3. Nếu gợi ý tổ hợp:",
			"   - Liệt kê top 3 tổ hợp (1️⃣ 2️⃣ 3️⃣), mỗi tổ hợp có tên, điểm và lý do phù hợp",
			"",
			"⚠️ LƯU Ý:",
			"- CHỈ nói \"không thể tính\" khi có trường \"error\"",
			"- Nếu có totalScore, BẮT BUỘC hiển thị kết quả chính xác",
			"- Số liệu CHÍNH XÁC từ kết quả tính toán, KHÔNG thêm gợi ý không được yêu cầu",
			"",
			"BẮT ĐẦU TRẢ LỜI BẰNG TIẾNG VIỆT:",
		)
	}
	return strings.Join(parts, "\n"), nil
}
