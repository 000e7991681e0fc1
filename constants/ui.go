package constants

import "time"

// UI Layout Constants
const (
	// FrameInterval is the redraw period (~30 FPS)
	FrameInterval = 33 * time.Millisecond

	// ContentWidth is the maximum text column width
	ContentWidth = 72

	// ScrollStep is the number of rows scrolled per wheel notch
	ScrollStep = 3

	// ConsoleHistory caps console output lines
	ConsoleHistory = 200

	// ConsoleClearDelay lets the "Clearing terminal..." reply show before the wipe
	ConsoleClearDelay = 50 * time.Millisecond

	// ConsoleInputLimit caps the console prompt length
	ConsoleInputLimit = 256
)

// Contact endpoint
const (
	// ContactPath is the intake route
	ContactPath = "/api/contact"

	// ContactBodyLimit caps the request body size
	ContactBodyLimit = 64 * 1024

	// ContactRequestTimeout bounds handler execution and client round trips
	ContactRequestTimeout = 10 * time.Second
)
