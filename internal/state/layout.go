package state

// Addon grid layout. Changing it requires the same change in the addon.
const (
	rowCooldown     = 1
	rowHealth       = 2
	rowFlags        = 3
	rowPower        = 4
	rowTargetHealth = 5
	rowRange        = 6

	colTargetIsFriend  = 1
	colHasTarget       = 2
	colPlayerIsCasting = 3
	colTargetIsCasting = 4

	// cooldown indicators start after the first five cells of row 1
	cooldownOffset = 5

	// percent values are rendered as 7 binary digits, most significant first
	percentBits = 7
)
