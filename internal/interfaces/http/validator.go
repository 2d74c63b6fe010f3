package http

import (
	"regexp"

	"project_asesoria/internal/entities"
)

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidWindow checks one business-hours row as submitted by the ops screen.
func ValidWindow(w entities.Window) bool {
	if w.Weekday < 0 || w.Weekday > 6 {
		return false
	}
	return hhmmRe.MatchString(w.Start) && hhmmRe.MatchString(w.End)
}

var chatIDRe = regexp.MustCompile(`^\d{5,20}(@[a-z.]+)?$`)

// ValidChatID accepts a bare phone id or the full JID form the transport
// uses, e.g. "573001112233@s.whatsapp.net".
func ValidChatID(s string) bool {
	return chatIDRe.MatchString(s)
}
