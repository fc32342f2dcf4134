package inventory

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// FoldSearch pliega mayúsculas con reglas Unicode. Los adaptadores guardan el serial
// plegado con esta misma función y el término de búsqueda se pliega igual.
func FoldSearch(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// CalendarDay reduce una fecha al día calendario en UTC, que es lo que se persiste
// para extracción y vencimiento.
func CalendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
