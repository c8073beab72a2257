package prompt

import (
	"strings"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/modes"
)

type QAInput struct {
	Mode     modes.Config
	Context  string
	History  []chat.Turn
	Question string
}

// QA builds the context-grounded answer prompt. An empty context is replaced
// by the NoContext placeholder.
func QA(in QAInput) string {
	ctx := strings.TrimSpace(in.Context)
	if ctx == "" {
		ctx = NoContext
	}

	parts := []string{
		in.Mode.SystemPrompt,
		"",
		"🇻🇳 NGÔN NGỮ: BẮT BUỘC trả lời bằng TIẾNG VIỆT, KHÔNG được dùng tiếng Anh hay ngôn ngữ khác!",
		"",
		"QUY TẮC QUAN TRỌNG:",
		"1. CHỈ trả lời dựa trên dữ liệu bên dưới",
		"2. KHÔNG tự bịa đặt thông tin",
		"3. KHÔNG tự giới thiệu, KHÔNG chào hỏi",
		"4. Trả lời NGẮN GỌN, CHÍNH XÁC, bằng TIẾNG VIỆT",
		"5. Nếu không có thông tin trong dữ liệu, trả lời: '" + FallbackSentence + "'",
		"",
		"⚠️ CÁCH TRẢ LỜI VỀ HỌC PHÍ:",
		"- Khi được hỏi học phí một ngành CỤ THỂ:",
		"  + Tìm CHÍNH XÁC ngành đó trong dữ liệu bên dưới (kiểm tra tên ngành)",
		"  + Copy CHÍNH XÁC số liệu học phí từ dữ liệu (VD: 15.204.000đ cho 12 tín chỉ)",
		"  + TUYỆT ĐỐI KHÔNG tự bịa số, KHÔNG làm tròn số, KHÔNG sửa đổi số liệu",
		"  + Tính học phí/tín chỉ: Chia học phí HK1 cho số tín chỉ",
		"  + KHÔNG đưa ra khoảng học phí chung (728.000đ - 1.838.000đ)",
		"  + KHÔNG nói 'tùy ngành'",
		"- Khi được hỏi học phí CHUNG của tất cả các ngành:",
		"  + Mới trả lời khoảng: 'Từ 728.000đ – 1.838.000đ/tín chỉ (tùy ngành)'",
		"",
		"VÍ DỤ TRẢ LỜI (bằng TIẾNG VIỆT):",
		"Câu hỏi: 'Học phí ngành Ngôn ngữ Anh?'",
		"❌ SAI: 'Học phí từ 728.000đ đến 1.838.000đ/tín chỉ'",
		"❌ SAI: 'Total tuition fee: 14,400,000 VND' (tiếng Anh + số sai!)",
		"❌ SAI: 'Học phí khoảng 14 triệu đồng' (số tự bịa!)",
		"✅ ĐÚNG: 'Học phí học kỳ 1 ngành Ngôn ngữ Anh năm 2025-2026 là 15.204.000đ (12 tín chỉ), tương đương 1.267.000đ/tín chỉ. Ngành này thuộc Nhóm 5.'",
		"",
		"DỮ LIỆU:",
		ctx,
		"",
	}

	if h := FormatHistory(in.History, "Người dùng", "MyU Bot"); h != "" {
		parts = append(parts, "Lịch sử hội thoại:", h, "")
	}

	parts = append(parts,
		"Câu hỏi: "+strings.TrimSpace(in.Question),
		"",
		"🇻🇳 Trả lời bằng TIẾNG VIỆT:",
	)
	return strings.Join(parts, "\n")
}
