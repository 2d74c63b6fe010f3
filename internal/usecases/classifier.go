package usecases

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the coarse classification used at the tail of the pipeline.
type Category string

const (
	CategorySchedule Category = "SCHEDULE"
	CategoryToxic    Category = "TOXIC"
	CategoryDistress Category = "DISTRESS"
	CategoryOther    Category = "OTHER"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var spaceRe = regexp.MustCompile(`\s+`)

// Normalize lower-cases, strips diacritics and collapses whitespace so
// keyword matchers work regardless of accents ("mañana" -> "manana").
func Normalize(text string) string {
	s := strings.ToLower(text)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

var scheduleRe = regexp.MustCompile(`horario|clases?|cronograma|agenda|a ?que hora|cuando hay clase|clase hoy|hay clase|que dias|schedule`)

var toxicRe = regexp.MustCompile(`hij[oa] de p|\bhp\b|malparid|imbecil|idiot|estupid|perr[oa]\b|mierd|vete a|callate|asco`)

var distressRe = regexp.MustCompile(`suicid|me quiero morir|no quiero vivir|me voy a matar|ansiedad|depresi[oó]n|ataque de panico|crisis|ayuda urgente|autolesi[oó]n|me siento muy mal`)

// Classify buckets a raw message into SCHEDULE, TOXIC, DISTRESS or OTHER.
// Order matters: a schedule request with an insult still counts as SCHEDULE.
func Classify(raw string) Category {
	t := Normalize(raw)
	switch {
	case scheduleRe.MatchString(t):
		return CategorySchedule
	case toxicRe.MatchString(t):
		return CategoryToxic
	case distressRe.MatchString(t):
		return CategoryDistress
	default:
		return CategoryOther
	}
}
