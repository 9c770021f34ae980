package nanoparticle

// HistoryElement records a single firing in the nanoparticle model:
// which interaction fired, which site(s) it fired at (SiteID[1] is -1
// for a one-site interaction), and the simulation time immediately
// after it fired.
type HistoryElement struct {
	InteractionID int
	SiteID        [2]int
	Time          float64
}
