package diagram

// PortRef pairs a port with its owning component.
type PortRef struct {
	Component *Component
	Port      *Port
}

// Index holds lookup tables over a diagram snapshot. Generators build one
// per pass instead of rescanning the component list for every string key.
type Index struct {
	components map[string]*Component
	ports      map[string]map[string]*Port
	protocols  map[string][]PortRef

	// protocolOrder keeps protocol names in first-appearance order so
	// callers can iterate deterministically.
	protocolOrder []string
}

// NewIndex builds the tables in one walk over d. The index reads the live
// entities; it is only valid while d stays unmodified.
func NewIndex(d *Diagram) *Index {
	ix := &Index{
		components: make(map[string]*Component, len(d.Components)),
		ports:      make(map[string]map[string]*Port, len(d.Components)),
		protocols:  make(map[string][]PortRef),
	}
	for _, c := range d.Components {
		ix.components[c.ID] = c
		byID := make(map[string]*Port, len(c.Ports))
		for i := range c.Ports {
			p := &c.Ports[i]
			byID[p.ID] = p
			if p.Type == PortCommunication {
				if _, ok := ix.protocols[p.ProtocolName]; !ok {
					ix.protocolOrder = append(ix.protocolOrder, p.ProtocolName)
				}
				ix.protocols[p.ProtocolName] = append(ix.protocols[p.ProtocolName], PortRef{Component: c, Port: p})
			}
		}
		ix.ports[c.ID] = byID
	}
	return ix
}

// Component resolves a component id.
func (ix *Index) Component(id string) (*Component, bool) {
	c, ok := ix.components[id]
	return c, ok
}

// Port resolves a port within a component.
func (ix *Index) Port(componentID, portID string) (*Port, bool) {
	byID, ok := ix.ports[componentID]
	if !ok {
		return nil, false
	}
	p, ok := byID[portID]
	return p, ok
}

// ProtocolPorts returns every communication port sharing the protocol, in
// diagram order.
func (ix *Index) ProtocolPorts(protocol string) []PortRef {
	return ix.protocols[protocol]
}

// Protocols lists the protocol names in first-appearance order.
func (ix *Index) Protocols() []string {
	return ix.protocolOrder
}
