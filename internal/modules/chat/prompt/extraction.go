package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tool intent names understood by the tool path.
const (
	IntentCalculateScore      = "calculate_score"
	IntentCheckEligibility    = "check_eligibility"
	IntentSuggestCombinations = "suggest_combinations"
)

var ErrNoJSON = errors.New("no json object in model output")

// Score accepts a JSON number or a numeric string using "," or "." as the
// decimal separator.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.ReplaceAll(strings.TrimSpace(str), ",", ".")
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("score %q: %w", str, err)
		}
		*s = Score(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Score(v)
	return nil
}

// Code accepts a JSON string or number, e.g. a program code written as 7380101.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*c = Code(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// Extraction is the typed form of the tool-extraction model output.
type Extraction struct {
	Intents     []string         `json:"intents" validate:"required,min=1,dive,required"`
	Scores      map[string]Score `json:"scores"`
	Combination Code             `json:"combination"`
	MajorCode   Code             `json:"majorCode"`
	MajorName   string           `json:"majorName"`
	// Intent is the older single-intent field; used only when Intents is empty.
	Intent string `json:"intent,omitempty" validate:"-"`
}

// ScoreMap converts scores to plain floats; nil when none were given.
func (e Extraction) ScoreMap() map[string]float64 {
	if len(e.Scores) == 0 {
		return nil
	}
	out := make(map[string]float64, len(e.Scores))
	for k, v := range e.Scores {
		out[k] = float64(v)
	}
	return out
}

var validate = validator.New()

// ParseExtraction decodes the first {...} span of raw model output and
// validates it. Any failure is returned as an error; it never panics.
func ParseExtraction(raw string) (Extraction, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Extraction{}, ErrNoJSON
	}

	var ex Extraction
	dec := json.NewDecoder(strings.NewReader(raw[start : end+1]))
	if err := dec.Decode(&ex); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction: %w", err)
	}
	if len(ex.Intents) == 0 {
		if one := strings.TrimSpace(ex.Intent); one != "" {
			ex.Intents = []string{one}
		}
	}
	ex.Intent = ""
	for i := range ex.Intents {
		ex.Intents[i] = strings.TrimSpace(ex.Intents[i])
	}
	if err := validate.Struct(ex); err != nil {
		return Extraction{}, fmt.Errorf("validate extraction: %w", err)
	}
	ex.Combination = Code(strings.ToUpper(string(ex.Combination)))
	ex.MajorName = strings.TrimSpace(ex.MajorName)
	return ex, nil
}

// Extract builds the prompt asking the model for tool parameters.
func Extract(question string, prior Prior) string {
	parts := []string{
		"Phân tích câu hỏi sau và trích xuất thông tin tính điểm xét tuyển.",
		fmt.Sprintf("Câu hỏi: %q", strings.TrimSpace(question)),
	}
	if prior.HasTotal {
		parts = append(parts, "", "Điểm từ câu hỏi trước: "+strconv.FormatFloat(prior.TotalScore, 'f', -1, 64))
	}
	if prior.Combination != "" {
		parts = append(parts, "", "Tổ hợp từ câu hỏi trước: "+prior.Combination)
	}
	parts = append(parts,
		"",
		"Hãy phân tích và trả về JSON với format chính xác:",
		"{",
		`  "intents": ["calculate_score", "check_eligibility"] (MẢNG các intent, có thể có nhiều intent),`,
		`  "scores": {"toán": 8, "lý": 7.5, "hóa": 9} (nếu có đề cập điểm các môn),`,
		`  "combination": "A00" (nếu có đề cập tổ hợp, viết HOA),`,
		`  "majorCode": "7380101" (nếu có đề cập mã ngành 7 chữ số hoặc tên ngành),`,
		`  "majorName": "Luật" (nếu có đề cập tên ngành)`,
		"}",
		"",
		"LƯU Ý QUAN TRỌNG:",
		`- "intents" là MẢNG, CÓ THỂ chứa NHIỀU giá trị cùng lúc!`,
		`- "tính điểm" + "xem đủ điểm" → intents: ["calculate_score", "check_eligibility"]`,
		`- Chỉ "tính điểm" → ["calculate_score"]; chỉ "đủ điểm/đậu vào" → ["check_eligibility"]; "gợi ý tổ hợp" → ["suggest_combinations"]`,
		"- Tên môn viết thường có dấu: toán, lý, hóa, văn, anh, sử, địa",
		"- Tổ hợp viết HOA: A00, A01, D01, C00, C04...",
		"- Các ngành thường gặp: Luật → 7380101, Kinh doanh thương mại → 7340121, Văn học → 7229030, Công nghệ thông tin → 7480201, Kế toán → 7810101",
		`- Nếu câu hỏi đề cập "điểm đó" hoặc "điểm này" mà có điểm từ lịch sử, KHÔNG cần scores trong JSON`,
		"",
		"CHỈ TRẢ VỀ JSON, KHÔNG GIẢI THÍCH:",
	)
	return strings.Join(parts, "\n")
}
