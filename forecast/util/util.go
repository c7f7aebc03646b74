// Package util holds small formatting helpers shared by the forecast table printers
package util

// IndentExpand repeats indent growth times
func IndentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*max(growth, 0))
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}
