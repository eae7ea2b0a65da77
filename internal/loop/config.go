package loop

import "time"

// Terminal render area limits. The playfield is 4:3 and a terminal cell is
// roughly twice as tall as it is wide, so 8 columns match 3 rows.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 60
	aspectCols    = 8
	aspectRows    = 3
)

// Inactivity
const (
	InactivityWarnUser       = 90 * time.Second
	InactivityDisconnectUser = 120 * time.Second
)

// Shutdown
const (
	shutdownDisplay = 10 * time.Second // How long the shutdown notice shows before disconnecting
)

// Logging
const (
	heartbeatFrames = 60 // Debug heartbeat interval
)

// Shown while the simulation keeps faulting.
const faultNotice = "Simulation fault, press Enter to restart"
