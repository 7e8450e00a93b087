package inventory

// Record tracks one item's stock position.
//
// Invariants:
// - 0 <= Committed <= Physical
// - OnOrder >= 0
type Record struct {
	ItemID    string `json:"item_id"`
	Physical  int    `json:"physical"`
	Committed int    `json:"committed"`
	OnOrder   int    `json:"on_order"`
}

// Available is physical stock not reserved by any order
func (r Record) Available() int {
	return r.Physical - r.Committed
}

// ProjectedAvailable includes stock that is on order but not yet received
func (r Record) ProjectedAvailable() int {
	return r.Physical - r.Committed + r.OnOrder
}
