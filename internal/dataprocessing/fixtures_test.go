package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// encodeLatin1 converts UTF-8 test text into the ISO-8859-1 bytes the
// statistics office ships.
func encodeLatin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func writeLatin1(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodeLatin1(t, content), 0o644))
	return path
}

// tableHTML renders an export with six preamble rows, the year and quarter
// header rows, then the given data rows.
func tableHTML(years, quarters []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"iso-8859-1\"></head><body><table>\n")
	for i := 0; i < yearHeaderRow; i++ {
		b.WriteString("<tr><td>Encuesta Nacional de Ocupación y Empleo</td></tr>\n")
	}
	writeRow(&b, append([]string{"Año"}, years...))
	writeRow(&b, append([]string{"Trimestre"}, quarters...))
	for _, r := range rows {
		writeRow(&b, r)
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>")
		b.WriteString(c)
		b.WriteString("</td>")
	}
	b.WriteString("</tr>\n")
}

func housingCSV(rows ...string) string {
	return "Global;Estado;Año;Trimestre;Indice\n" + strings.Join(rows, "\n") + "\n"
}
