package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Scores maps raw subject labels ("Toán", "vật lý", "english") to marks.
type Scores map[string]float64

type ScoreResult struct {
	Combination     string             `json:"combination"`
	CombinationName string             `json:"combinationName"`
	Subjects        []string           `json:"subjects"`
	Scores          map[string]float64 `json:"scores"`
	TotalScore      float64            `json:"totalScore"`
	AverageScore    float64            `json:"averageScore"`
	IsValid         bool               `json:"isValid"`
}

type Eligibility struct {
	MajorCode  string  `json:"majorCode"`
	MajorName  string  `json:"majorName"`
	TotalScore float64 `json:"totalScore"`
	Benchmark  float64 `json:"benchmark"`
	IsEligible bool    `json:"isEligible"`
	Difference float64 `json:"difference"`
	Message    string  `json:"message"`
}

type Suggestion struct {
	Combination     string  `json:"combination"`
	CombinationName string  `json:"combinationName"`
	TotalScore      float64 `json:"totalScore"`
	AverageScore    float64 `json:"averageScore"`
}

// UnknownCombinationError is returned for codes outside the reference table.
type UnknownCombinationError struct {
	Code string
}

func (e *UnknownCombinationError) Error() string {
	codes := make([]string, 0, len(combinations))
	for _, c := range combinations {
		codes = append(codes, c.Code)
	}
	return fmt.Sprintf("Không tìm thấy tổ hợp %s. Các tổ hợp hợp lệ: %s", e.Code, strings.Join(codes, ", "))
}

// MissingSubjectsError lists required subjects with no usable mark.
type MissingSubjectsError struct {
	Code    string
	Missing []string
}

func (e *MissingSubjectsError) Error() string {
	return fmt.Sprintf("Thiếu điểm môn: %s. Vui lòng cung cấp đủ 3 môn cho tổ hợp %s.", strings.Join(e.Missing, ", "), e.Code)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func canonicalScores(scores Scores) map[string]float64 {
	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make(map[string]float64, len(scores))
	for _, label := range labels {
		v := scores[label]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if subject, ok := CanonicalSubject(label); ok {
			if _, seen := out[subject]; !seen {
				out[subject] = v
			}
		}
	}
	return out
}

// CalculateAdmissionScore sums the three subjects of a combination.
// Total and average are rounded to two decimals.
func CalculateAdmissionScore(scores Scores, combinationCode string) (ScoreResult, error) {
	combo, ok := LookupCombination(combinationCode)
	if !ok {
		return ScoreResult{}, &UnknownCombinationError{Code: strings.TrimSpace(combinationCode)}
	}
	normalized := canonicalScores(scores)

	var total float64
	found := make(map[string]float64, 3)
	var missing []string
	for _, subject := range combo.Subjects {
		v, ok := normalized[subject]
		if !ok {
			missing = append(missing, subject)
			continue
		}
		total += v
		found[subject] = v
	}
	if len(missing) > 0 {
		return ScoreResult{}, &MissingSubjectsError{Code: combo.Code, Missing: missing}
	}

	return ScoreResult{
		Combination:     combo.Code,
		CombinationName: combo.Name,
		Subjects:        combo.Subjects[:],
		Scores:          found,
		TotalScore:      round2(total),
		AverageScore:    round2(total / float64(len(combo.Subjects))),
		IsValid:         true,
	}, nil
}

// CheckEligibility compares a total against the program's benchmark. Unknown
// program codes are judged against DefaultBenchmark.
func CheckEligibility(totalScore float64, programCode string) Eligibility {
	b, _ := LookupBenchmark(programCode)
	diff := round2(totalScore - b.Score)
	eligible := totalScore >= b.Score

	gap := strconv.FormatFloat(math.Abs(diff), 'f', -1, 64)
	msg := fmt.Sprintf("❌ Thiếu %s điểm so với điểm chuẩn", gap)
	if eligible {
		msg = fmt.Sprintf("✅ Đủ điểm! Cao hơn điểm chuẩn %s điểm", gap)
	}
	return Eligibility{
		MajorCode:  strings.TrimSpace(programCode),
		MajorName:  b.Name,
		TotalScore: round2(totalScore),
		Benchmark:  b.Score,
		IsEligible: eligible,
		Difference: diff,
		Message:    msg,
	}
}

// SuggestBestCombinations scores every combination the marks can fill and
// returns the best three by total, highest first. Ties keep table order.
func SuggestBestCombinations(scores Scores) []Suggestion {
	var results []ScoreResult
	for _, c := range combinations {
		r, err := CalculateAdmissionScore(scores, c.Code)
		if err != nil || !r.IsValid {
			continue
		}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})
	if len(results) > 3 {
		results = results[:3]
	}
	out := make([]Suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, Suggestion{
			Combination:     r.Combination,
			CombinationName: r.CombinationName,
			TotalScore:      r.TotalScore,
			AverageScore:    r.AverageScore,
		})
	}
	return out
}
