package server

const (
	Green      = "\033[32m"
	Yellow     = "\033[33m"
	Red        = "\033[31m"
	Gray       = "\033[90m"
	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":  Green,
	"POST": Yellow,
}
