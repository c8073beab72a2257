package scoring

// Combination is an admission subject group: exactly three canonical subjects.
type Combination struct {
	Code     string
	Subjects [3]string
	Name     string
}

// Benchmark is the minimum total required by a program.
type Benchmark struct {
	Score float64
	Name  string
}

var combinations = []Combination{
	{Code: "A00", Subjects: [3]string{"toán", "lý", "hóa"}, Name: "Toán, Lý, Hóa"},
	{Code: "A01", Subjects: [3]string{"toán", "lý", "anh"}, Name: "Toán, Lý, Anh"},
	{Code: "D01", Subjects: [3]string{"toán", "văn", "anh"}, Name: "Toán, Văn, Anh"},
	{Code: "C00", Subjects: [3]string{"văn", "sử", "địa"}, Name: "Văn, Sử, Địa"},
	{Code: "C04", Subjects: [3]string{"toán", "văn", "địa"}, Name: "Toán, Văn, Địa"},
	{Code: "A12", Subjects: [3]string{"toán", "khtn", "khxh"}, Name: "Toán, KHTN, KHXH"},
	{Code: "A15", Subjects: [3]string{"toán", "khtn", "gdcd"}, Name: "Toán, KHTN, GDCD"},
	{Code: "X54", Subjects: [3]string{"toán", "gdktpl", "cnts"}, Name: "Toán, GDKT&PL, CNTS"},
	{Code: "X05", Subjects: [3]string{"toán", "lý", "gdktpl"}, Name: "Toán, Lý, GDKT&PL"},
	{Code: "C14", Subjects: [3]string{"văn", "toán", "gdcd"}, Name: "Văn, Toán, GDCD"},
	{Code: "C16", Subjects: [3]string{"văn", "lý", "gdcd"}, Name: "Văn, Lý, GDCD"},
	{Code: "D14", Subjects: [3]string{"văn", "sử", "anh"}, Name: "Văn, Sử, Anh"},
	{Code: "D15", Subjects: [3]string{"văn", "địa", "anh"}, Name: "Văn, Địa, Anh"},
	{Code: "X01", Subjects: [3]string{"toán", "văn", "gdktpl"}, Name: "Toán, Văn, GDKT&PL"},
	{Code: "X70", Subjects: [3]string{"văn", "sử", "gdktpl"}, Name: "Văn, Sử, GDKT&PL"},
}

var subjectAliases = map[string][]string{
	"toán":   {"toan", "toán", "math", "tóan"},
	"lý":     {"ly", "lý", "vật lý", "vật lí", "physics", "li"},
	"hóa":    {"hoa", "hóa", "hóa học", "chemistry", "hoá"},
	"văn":    {"van", "văn", "ngữ văn", "literature", "ngu van"},
	"anh":    {"anh", "tiếng anh", "english", "ta"},
	"sử":     {"su", "sử", "lịch sử", "history", "lich su"},
	"địa":    {"dia", "địa", "địa lý", "geography", "dia ly"},
	"khtn":   {"khtn", "khoa học tự nhiên", "kh tự nhiên"},
	"khxh":   {"khxh", "khoa học xã hội", "kh xã hội"},
	"gdcd":   {"gdcd", "giáo dục công dân", "gd công dân"},
	"gdktpl": {"gdktpl", "gdkt&pl", "giáo dục kinh tế và pháp luật", "kt&pl"},
	"cnts":   {"cnts", "công nghệ công nghiệp"},
}

var benchmarks = map[string]Benchmark{
	"7340121": {Score: 18.0, Name: "Kinh doanh thương mại"},
	"7229030": {Score: 19.5, Name: "Văn học"},
	"7480201": {Score: 20.0, Name: "Công nghệ thông tin"},
	"7810101": {Score: 19.0, Name: "Kế toán"},
	"7810103": {Score: 19.0, Name: "Kiểm toán"},
	"7340101": {Score: 18.5, Name: "Quản trị kinh doanh"},
	"7340115": {Score: 19.0, Name: "Marketing"},
	"7340122": {Score: 18.5, Name: "Thương mại điện tử"},
	"7340201": {Score: 18.0, Name: "Logistics và Quản lý chuỗi"},
	"7380101": {Score: 19.5, Name: "Luật"},
	"7380107": {Score: 19.0, Name: "Luật kinh tế"},
}

// DefaultBenchmark applies to program codes missing from the table.
var DefaultBenchmark = Benchmark{Score: 18.0, Name: "Ngành học"}

var majorCodes = map[string]string{
	"luật":                  "7380101",
	"luật kinh tế":          "7380107",
	"kinh doanh thương mại": "7340121",
	"văn học":               "7229030",
	"công nghệ thông tin":   "7480201",
	"kế toán":               "7810101",
	"kiểm toán":             "7810103",
	"quản trị kinh doanh":   "7340101",
	"marketing":             "7340115",
	"thương mại điện tử":    "7340122",
	"logistics":             "7340201",
}

// Combinations returns the reference table in its canonical order.
func Combinations() []Combination {
	out := make([]Combination, len(combinations))
	copy(out, combinations)
	return out
}

// LookupCombination finds a combination by code, case-insensitively.
func LookupCombination(code string) (Combination, bool) {
	code = normalizeCode(code)
	for _, c := range combinations {
		if c.Code == code {
			return c, true
		}
	}
	return Combination{}, false
}

// LookupBenchmark returns the benchmark for a program code and whether it was known.
func LookupBenchmark(programCode string) (Benchmark, bool) {
	b, ok := benchmarks[normalizeCode(programCode)]
	if !ok {
		return DefaultBenchmark, false
	}
	return b, true
}

// ResolveMajorCode maps a program name such as "Công nghệ thông tin" to its code.
func ResolveMajorCode(name string) (string, bool) {
	key := fold(name)
	if key == "" {
		return "", false
	}
	for major, code := range majorCodes {
		if fold(major) == key {
			return code, true
		}
	}
	return "", false
}
