package intent

import (
	"regexp"
	"strings"
)

type Kind string

const (
	None        Kind = "none"
	Gratitude   Kind = "gratitude"
	Greeting    Kind = "greeting"
	Calculation Kind = "calculation"
)

// Shape is the breadth of a question, used to size retrieval.
type Shape string

const (
	ShapeGeneral Shape = "general"
	ShapeListing Shape = "listing"
	ShapeTuition Shape = "tuition"
)

type Input struct {
	Text string
	// FirstTurn is true when the session has no stored turns yet.
	FirstTurn bool
}

type Result struct {
	Kind  Kind
	Shape Shape
}

// Classifier labels an incoming message. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Classify(in Input) Result
}

var (
	gratitudeRe   = regexp.MustCompile(`(?i)^(cảm ơn|thank|thanks|cám ơn|tks|ok|oke|được rồi|hiểu rồi|rõ rồi|đã hiểu)$`)
	greetingRe    = regexp.MustCompile(`(?i)^(chào|hello|hi|xin chào|hey)$`)
	numbersRe     = regexp.MustCompile(`\d+([.,]\d+)?`)
	calculationRe = regexp.MustCompile(`(?i)(tính điểm|điểm của (tôi|mình|em)|đủ điểm|kiểm tra điểm|xem điểm tôi|tôi được bao nhiêu điểm|đậu vào|đậu được|trúng tuyển|có thể vào|có đủ điểm)`)
	suggestRe     = regexp.MustCompile(`(?i)gợi ý tổ hợp`)
	listingRe     = regexp.MustCompile(`(?i)(liệt kê|các ngành|ngành nào|những ngành|danh sách|có những ngành|gồm những ngành)`)

	listingShapeRe = regexp.MustCompile(`(?i)(liệt kê|các ngành|ngành nào|những ngành|danh sách)`)
	tuitionShapeRe = regexp.MustCompile(`(?i)(học phí|học bổng|chi phí|mức phí)`)
)

// RuleClassifier applies the fixed rule tables in precedence order:
// gratitude, greeting, calculation, then none.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (RuleClassifier) Classify(in Input) Result {
	res := Result{Kind: None, Shape: DetectShape(in.Text)}
	trimmed := strings.TrimSpace(in.Text)

	switch {
	case !in.FirstTurn && gratitudeRe.MatchString(trimmed):
		res.Kind = Gratitude
	case greetingRe.MatchString(trimmed):
		res.Kind = Greeting
	case NeedsCalculation(in.Text):
		res.Kind = Calculation
	}
	return res
}

// NeedsCalculation reports whether a message carries numeric scores together
// with calculation or combination-suggestion phrasing. Listing questions never
// qualify.
func NeedsCalculation(text string) bool {
	if listingRe.MatchString(text) {
		return false
	}
	if !numbersRe.MatchString(text) {
		return false
	}
	return calculationRe.MatchString(text) || suggestRe.MatchString(text)
}

// DetectShape picks the retrieval breadth for a question. Listing wins over
// tuition.
func DetectShape(text string) Shape {
	switch {
	case listingShapeRe.MatchString(text):
		return ShapeListing
	case tuitionShapeRe.MatchString(text):
		return ShapeTuition
	default:
		return ShapeGeneral
	}
}
