// Package ui provides small terminal components shared by the dashboard and
// the CLI commands.
//
//	Spinner    - Animated status line for blocking steps such as a connection test
//	Sparkline  - One block per 0-100 reading, used for the fleet overview
//
// # Color Scheme
//
// Colors are ANSI codes so they follow the user's terminal theme:
//
//	ColorSuccess   (green)  - Healthy readings, completed steps
//	ColorWarning   (yellow) - Readings above WarnPercent
//	ColorError     (red)    - Readings above CritPercent, failures
//	ColorMuted     (gray)   - Timing and secondary text
//	ColorSecondary (blue)   - In-progress indicators
package ui
