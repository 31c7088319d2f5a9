package merge

import "strings"

// textArray renders a []string as a Postgres array literal suitable for a
// parameter with a ::text[] cast. pgx's native []string codec is not
// reachable through database/sql, so array columns are passed as literals.
func textArray(vals []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		if arrayElementNeedsQuoting(v) {
			b.WriteByte('"')
			b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v))
			b.WriteByte('"')
		} else {
			b.WriteString(v)
		}
	}
	b.WriteByte('}')
	return b.String()
}

func arrayElementNeedsQuoting(v string) bool {
	if v == "" || strings.EqualFold(v, "null") {
		return true
	}
	return strings.ContainsAny(v, `{},"\ 	`)
}
