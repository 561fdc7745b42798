package applog

import "regexp"

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;]+)`)
	reBearer   = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._-]+)`)
	reDSNPass  = regexp.MustCompile(`(://)([^:/@]+):([^@]+)(@)`)
	reMySQLDSN = regexp.MustCompile(`^([^:/@]+):([^@]+)(@tcp\()`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=|key=)([^\s;&]+)`)
)

// Mask replaces credentials in connection strings, headers and URLs with
// "***" so they can be logged.
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reDSNPass.ReplaceAllString(out, "$1$2:***$4")
	out = reMySQLDSN.ReplaceAllString(out, "$1:***$3")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	return out
}
