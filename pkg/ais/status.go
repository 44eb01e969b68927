package ais

import "fmt"

// NavStatus is the 4-bit navigational status of a class A position report.
type NavStatus int

// Navigational status codes.
const (
	UnderWayUsingEngine       NavStatus = 0
	AtAnchor                  NavStatus = 1
	NotUnderCommand           NavStatus = 2
	RestrictedManoeuvrability NavStatus = 3
	ConstrainedByDraught      NavStatus = 4
	Moored                    NavStatus = 5
	Aground                   NavStatus = 6
	EngagedInFishing          NavStatus = 7
	UnderWaySailing           NavStatus = 8
	ReservedHSC               NavStatus = 9
	ReservedWIG               NavStatus = 10
	TowingAstern              NavStatus = 11
	PushingAheadOrTowing      NavStatus = 12
	Reserved13                NavStatus = 13
	SARTActive                NavStatus = 14
	Undefined                 NavStatus = 15
)

var navStatusNames = [...]string{
	"under way using engine",
	"at anchor",
	"not under command",
	"restricted manoeuvrability",
	"constrained by her draught",
	"moored",
	"aground",
	"engaged in fishing",
	"under way sailing",
	"reserved for HSC",
	"reserved for WIG",
	"power-driven vessel towing astern",
	"power-driven vessel pushing ahead or towing alongside",
	"reserved",
	"AIS-SART active",
	"undefined",
}

func (s NavStatus) String() string {
	if s < 0 || int(s) >= len(navStatusNames) {
		return fmt.Sprintf("NavStatus(%d)", int(s))
	}
	return navStatusNames[s]
}
