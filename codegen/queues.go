package codegen

import (
	"github.com/panyam/connectus/diagram"
)

// QueueSize computes the message queue capacity the runtime allocates for
// one component:
//
//	maxMessages
//	+ one slot per communication port expecting invoke deliveries
//	+ 2*t + 1 timer slots when the component has t > 0 timing ports
//
// The formula is fixed policy of the EDROOM queue allocator and is
// reproduced here exactly; it is not configurable.
func QueueSize(c *diagram.Component) int {
	size := c.MaxMessages
	for i := range c.Ports {
		p := &c.Ports[i]
		if p.Type == diagram.PortCommunication && hasInboundInvoke(p) {
			size++
		}
	}
	if t := c.TimingPorts(); t > 0 {
		size += 2*t + 1
	}
	return size
}

// hasInboundInvoke reports whether the port will have invoke messages
// delivered to it. Message direction is declared relative to the nominal
// side, so an in-invoke lands on the nominal port and an out-invoke lands
// on the conjugate one.
func hasInboundInvoke(p *diagram.Port) bool {
	for _, m := range p.Messages {
		if m.Kind != diagram.KindInvoke {
			continue
		}
		if (m.Direction == diagram.DirIn && p.Subtype == diagram.SubtypeNominal) ||
			(m.Direction == diagram.DirOut && p.Subtype == diagram.SubtypeConjugate) {
			return true
		}
	}
	return false
}
