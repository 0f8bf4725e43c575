package domain

import "time"

// Event is the capacity-bounded resource tickets are issued against.
// Address, owner, name, date and capacity are fixed at creation; Issued
// only ever grows and never exceeds Capacity.
type Event struct {
	Address  string
	Owner    string
	Name     string
	Date     time.Time
	Capacity uint32
	Issued   uint32
}
