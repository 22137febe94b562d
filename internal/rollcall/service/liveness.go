package service

import (
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// LivenessWindow is how recently a device must have scanned to be Online.
const LivenessWindow = 300 * time.Second

// Liveness classifies a device by its last scan relative to now. A device
// seen exactly LivenessWindow ago is still Online.
func Liveness(lastSeen, now time.Time) types.Liveness {
	if now.Sub(lastSeen) <= LivenessWindow {
		return types.Online
	}
	return types.Offline
}
