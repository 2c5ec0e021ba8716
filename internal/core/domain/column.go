package domain

// ColumnLabel converts a 1-based column index to its spreadsheet label:
// 1 is "A", 26 is "Z", 27 is "AA", 703 is "AAA". Non-positive input yields "".
func ColumnLabel(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
