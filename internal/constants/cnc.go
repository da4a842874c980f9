package constants

const (
	// OrigenProgreso marks the progress events that count as production.
	OrigenProgreso = "Progreso"

	BusinessSabimet = "sabimet"
	BusinessSteelk  = "steelk"
)

var (
	// Machines is the closed set of CNC machines on the floor.
	Machines = []string{"m1", "m2", "m3"}

	Businesses = []string{BusinessSabimet, BusinessSteelk}
)
