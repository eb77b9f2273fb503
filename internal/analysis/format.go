package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	// Embed the zone database so Asia/Makassar resolves on minimal images.
	_ "time/tzdata"

	"github.com/dustin/go-humanize"
)

// Location is the display time zone for dates shown to users.
var Location = loadLocation("Asia/Makassar", 8*60*60)

func loadLocation(name string, offset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WITA", offset)
	}
	return loc
}

var (
	dayNames   = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	monthNames = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli",
		"Agustus", "September", "Oktober", "November", "Desember"}
)

// Rupiah formats n as "Rp 20.000".
func Rupiah(n int64) string {
	return "Rp " + humanize.FormatInteger("#.###,", int(n))
}

// MonthName returns the Indonesian name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Date formats t as "Senin, 14 Oktober" in Location.
func Date(t time.Time) string {
	t = t.In(Location)
	return fmt.Sprintf("%s, %d %s", dayNames[t.Weekday()], t.Day(), MonthName(t.Month()))
}

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`#{1,6}\s`), ""},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile("`(.*?)`"), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^[ \t]*[-*+]\s`), "• "},
	{regexp.MustCompile(`(?m)^[ \t]*\d+\.\s`), ""},
}

// StripMarkdown removes markdown markup for plain-text chat surfaces.
func StripMarkdown(text string) string {
	for _, r := range markdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.TrimSpace(text)
}
