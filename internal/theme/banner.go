package theme

// Banner returns the CLI banner.
func Banner() string {
	const cyan = "\033[36m"
	const magenta = "\033[35m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	art := "" +
		cyan + "  ▁▂▃▅▆▇ " + reset + magenta + "TRENDFORGE" + reset + cyan + " ▇▆▅▃▂▁\n" + reset +
		yellow + "  ──────────────────────────────\n" + reset +
		"  trend-driven content calendars\n"
	return art
}
