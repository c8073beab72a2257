package prompt

const (
	GratitudeReply = "Không có gì! 😊 Nếu bạn còn thắc mắc gì về Đại học Văn Hiến, cứ hỏi mình nhé! ✨"
	GreetingReply  = "Chào bạn! 😊 Mình là MyU Bot - trợ lý tuyển sinh Đại học Văn Hiến. Bạn muốn hỏi gì về trường mình không?"

	// FallbackSentence is what the model must answer when the context has no match.
	FallbackSentence = "Tôi không tìm thấy thông tin này trong dữ liệu. Vui lòng truy cập https://portal.vhu.edu.vn/ để biết thêm chi tiết."

	// NoContext fills the data block when a grounded turn has no context at all.
	NoContext = "Không có thông tin liên quan."
	// NoWebResults is the web-search placeholder when every search backend came back empty.
	NoWebResults = "Không tìm thấy thông tin liên quan."

	// Apology is the only text shown to users for internal failures.
	Apology = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau."
)
