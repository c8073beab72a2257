package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAdmissionScoreA00(t *testing.T) {
	res, err := CalculateAdmissionScore(Scores{"Toán": 8, "Lý": 7.5, "Hóa": 9}, "a00")
	require.NoError(t, err)

	assert.True(t, res.IsValid)
	assert.Equal(t, "A00", res.Combination)
	assert.Equal(t, 24.5, res.TotalScore)
	assert.Equal(t, 8.17, res.AverageScore)
	assert.Equal(t, map[string]float64{"toán": 8, "lý": 7.5, "hóa": 9}, res.Scores)
}

func TestCalculateAdmissionScoreAliasSpellings(t *testing.T) {
	res, err := CalculateAdmissionScore(Scores{"math": 9.25, "Ngữ văn": 6.5, "Tiếng Anh": 8}, "D01")
	require.NoError(t, err)
	assert.Equal(t, 23.75, res.TotalScore)
	assert.Equal(t, 7.92, res.AverageScore)

	// "Địa lý" must resolve to địa, not lý.
	res, err = CalculateAdmissionScore(Scores{"Văn": 7, "Lịch sử": 6, "Địa lý": 8}, "C00")
	require.NoError(t, err)
	assert.Equal(t, 21.0, res.TotalScore)
}

func TestCanonicalSubjectPunctuatedLabels(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"GDKT&PL", "gdktpl"},
		{"Toán:", "toán"},
		{"(Hóa học)", "hóa"},
		{"Vật lí", "lý"},
		{"Địa lý", "địa"},
		{"môn Ngữ văn.", "văn"},
	}
	for _, tc := range cases {
		got, ok := CanonicalSubject(tc.label)
		require.True(t, ok, "label %q", tc.label)
		assert.Equal(t, tc.want, got, "label %q", tc.label)
	}

	_, ok := CanonicalSubject("?!")
	assert.False(t, ok)
}

func TestCalculateAdmissionScoreWithAbbreviatedSubject(t *testing.T) {
	res, err := CalculateAdmissionScore(Scores{"Toán": 8, "Lý": 7, "GDKT&PL": 9}, "X05")
	require.NoError(t, err)
	assert.Equal(t, 24.0, res.TotalScore)
	assert.Equal(t, 8.0, res.AverageScore)
}

func TestCalculateAdmissionScoreUnknownCombination(t *testing.T) {
	for _, code := range []string{"Z99", "", "A0"} {
		_, err := CalculateAdmissionScore(Scores{"toán": 8, "lý": 8, "hóa": 8}, code)
		var unknown *UnknownCombinationError
		require.True(t, errors.As(err, &unknown), "code %q", code)
		assert.Contains(t, err.Error(), "Các tổ hợp hợp lệ: A00, A01")
	}
}

func TestCalculateAdmissionScoreMissingSubject(t *testing.T) {
	_, err := CalculateAdmissionScore(Scores{"toán": 8, "lý": math.NaN()}, "A00")
	var missing *MissingSubjectsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"lý", "hóa"}, missing.Missing)
	assert.Equal(t, "Thiếu điểm môn: lý, hóa. Vui lòng cung cấp đủ 3 môn cho tổ hợp A00.", err.Error())
}

func TestCalculateAdmissionScoreSumProperty(t *testing.T) {
	grid := []float64{0, 1.25, 5.5, 6.75, 8, 9.9, 10}
	for _, a := range grid {
		for _, b := range grid {
			for _, c := range grid {
				res, err := CalculateAdmissionScore(Scores{"toán": a, "lý": b, "anh": c}, "A01")
				require.NoError(t, err)
				sum := a + b + c
				assert.Equal(t, round2(sum), res.TotalScore)
				assert.Equal(t, round2(sum/3), res.AverageScore)
			}
		}
	}
}

func TestCheckEligibility(t *testing.T) {
	for code, b := range benchmarks {
		for _, total := range []float64{b.Score - 0.25, b.Score, b.Score + 1.5} {
			got := CheckEligibility(total, code)
			assert.Equal(t, total >= b.Score, got.IsEligible, "%s at %v", code, total)
			assert.Equal(t, round2(total-b.Score), got.Difference)
			assert.Equal(t, b.Name, got.MajorName)
		}
	}

	got := CheckEligibility(24.5, "7480201")
	assert.Equal(t, "✅ Đủ điểm! Cao hơn điểm chuẩn 4.5 điểm", got.Message)

	got = CheckEligibility(17, "7380101")
	assert.False(t, got.IsEligible)
	assert.Equal(t, "❌ Thiếu 2.5 điểm so với điểm chuẩn", got.Message)
}

func TestCheckEligibilityUnknownProgramUsesDefault(t *testing.T) {
	got := CheckEligibility(18, "0000000")
	assert.True(t, got.IsEligible)
	assert.Equal(t, DefaultBenchmark.Score, got.Benchmark)
	assert.Equal(t, DefaultBenchmark.Name, got.MajorName)
}

func TestSuggestBestCombinations(t *testing.T) {
	got := SuggestBestCombinations(Scores{"Toán": 8, "Văn": 7, "Anh": 9, "Lý": 7.5, "Hóa": 6})
	require.Len(t, got, 3)
	assert.Equal(t, "A01", got[0].Combination)
	assert.Equal(t, 24.5, got[0].TotalScore)
	assert.Equal(t, "D01", got[1].Combination)
	assert.Equal(t, 24.0, got[1].TotalScore)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].TotalScore, got[i].TotalScore)
	}
	assert.Equal(t, "A00", got[2].Combination)
	assert.Equal(t, 21.5, got[2].TotalScore)
}

func TestSuggestBestCombinationsSkipsIncomplete(t *testing.T) {
	got := SuggestBestCombinations(Scores{"toán": 8, "lý": 7, "anh": 6})
	require.Len(t, got, 1)
	assert.Equal(t, "A01", got[0].Combination)

	assert.Empty(t, SuggestBestCombinations(Scores{"toán": 9}))
}

func TestResolveMajorCode(t *testing.T) {
	code, ok := ResolveMajorCode("Cong nghe thong tin")
	require.True(t, ok)
	assert.Equal(t, "7480201", code)

	_, ok = ResolveMajorCode("thiên văn học")
	assert.False(t, ok)
}
