package diagram

// Validate re-checks every model invariant over the whole aggregate and
// accumulates the findings. Diagrams built through the mutators always pass;
// the point of this walk is documents that arrived from outside, where the
// load path deliberately reports only parse-level failures.
func (d *Diagram) Validate() *ErrorCollector {
	ec := &ErrorCollector{MaxErrors: 100}

	seenIDs := map[string]bool{}
	seenNames := map[string]bool{}
	seenNumbers := map[int]string{}

	for _, c := range d.Components {
		if c.ID == "" {
			ec.Errorf("component with empty id")
		}
		if seenIDs[c.ID] {
			ec.Errorf("duplicate component id %q", c.ID)
		}
		seenIDs[c.ID] = true
		if c.Name == "" {
			ec.Errorf("component %q: empty name", c.ID)
		} else if seenNames[c.Name] {
			ec.Errorf("duplicate component name %q", c.Name)
		}
		seenNames[c.Name] = true
		if c.ComponentID <= 0 {
			ec.Errorf("component %q: componentId must be a positive integer", c.ID)
		} else if prev, ok := seenNumbers[c.ComponentID]; ok {
			ec.Errorf("component %q: componentId %d already used by %q", c.ID, c.ComponentID, prev)
		} else {
			seenNumbers[c.ComponentID] = c.ID
		}
		if c.MaxMessages <= 0 {
			ec.Errorf("component %q: maxMessages must be positive", c.ID)
		}
		if c.StackSize <= 0 {
			ec.Errorf("component %q: stackSize must be positive", c.ID)
		}
		if c.Priority != "" && !c.Priority.Valid() {
			ec.Errorf("component %q: unknown priority %q", c.ID, c.Priority)
		}
		d.validatePorts(ec, c)
	}

	if d.TopComponentID != "" && d.Component(d.TopComponentID) == nil {
		ec.Errorf("top component %q does not exist", d.TopComponentID)
	}

	d.validateProtocols(ec)
	d.validateConnections(ec)
	return ec
}

func (d *Diagram) validatePorts(ec *ErrorCollector, c *Component) {
	seenIDs := map[string]bool{}
	seenNames := map[string]bool{}
	for i := range c.Ports {
		p := &c.Ports[i]
		if !numericID(p.ID) {
			ec.Errorf("component %q: port id %q is not numeric", c.ID, p.ID)
		}
		if seenIDs[p.ID] {
			ec.Errorf("component %q: duplicate port id %q", c.ID, p.ID)
		}
		seenIDs[p.ID] = true
		if p.Name == "" {
			ec.Errorf("component %q: port %q has an empty name", c.ID, p.ID)
		} else if seenNames[p.Name] {
			ec.Errorf("component %q: duplicate port name %q", c.ID, p.Name)
		}
		seenNames[p.Name] = true
		if !p.Type.Valid() {
			ec.Errorf("component %q: port %q has unknown type %q", c.ID, p.ID, p.Type)
			continue
		}
		if p.Type == PortCommunication && !p.Subtype.Valid() {
			ec.Errorf("component %q: communication port %q needs a nominal or conjugate subtype", c.ID, p.ID)
		}
	}
}

// validateProtocols walks each protocol once, in first-appearance order,
// checking signal uniqueness and the reply pairing rules.
func (d *Diagram) validateProtocols(ec *ErrorCollector) {
	ix := NewIndex(d)
	for _, protocol := range ix.Protocols() {
		type msgAt struct {
			ref PortRef
			msg *Message
		}
		var all []msgAt
		for _, ref := range ix.ProtocolPorts(protocol) {
			for j := range ref.Port.Messages {
				all = append(all, msgAt{ref: ref, msg: &ref.Port.Messages[j]})
			}
		}

		seen := map[string]bool{}
		invokes := map[string]*Message{}
		for _, m := range all {
			if m.msg.Signal == "" {
				ec.Errorf("protocol %q: message with empty signal", protocol)
				continue
			}
			if seen[m.msg.Signal] {
				ec.Errorf("protocol %q: duplicate signal %q", protocol, m.msg.Signal)
			}
			seen[m.msg.Signal] = true
			if !m.msg.Direction.Valid() {
				ec.Errorf("protocol %q: signal %q has unknown direction %q", protocol, m.msg.Signal, m.msg.Direction)
			}
			if !m.msg.Kind.Valid() {
				ec.Errorf("protocol %q: signal %q has unknown kind %q", protocol, m.msg.Signal, m.msg.Kind)
			}
			if m.msg.Kind == KindInvoke {
				invokes[m.msg.Signal] = m.msg
			}
		}

		replies := map[string]string{}
		for _, m := range all {
			if m.msg.Kind != KindReply {
				continue
			}
			invoke, ok := invokes[m.msg.InvokeSignal]
			if !ok {
				ec.Errorf("protocol %q: reply %q references missing invoke %q", protocol, m.msg.Signal, m.msg.InvokeSignal)
				continue
			}
			if m.msg.Direction != invoke.Direction.Opposite() {
				ec.Errorf("protocol %q: reply %q must carry the direction opposite to invoke %q",
					protocol, m.msg.Signal, m.msg.InvokeSignal)
			}
			if prev, ok := replies[m.msg.InvokeSignal]; ok {
				ec.Errorf("protocol %q: invoke %q has replies %q and %q", protocol, m.msg.InvokeSignal, prev, m.msg.Signal)
			} else {
				replies[m.msg.InvokeSignal] = m.msg.Signal
			}
		}
	}
}

func (d *Diagram) validateConnections(ec *ErrorCollector) {
	ix := NewIndex(d)
	used := map[string]int{}
	key := func(componentID, portID string) string { return componentID + ":" + portID }

	for _, conn := range d.Connections {
		src, okSrc := ix.Component(conn.SourceComponentID)
		dst, okDst := ix.Component(conn.TargetComponentID)
		if !okSrc || !okDst {
			ec.Errorf("connection %s:%s -> %s:%s references a missing component",
				conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
			continue
		}
		sp, okSp := ix.Port(src.ID, conn.SourcePortID)
		tp, okTp := ix.Port(dst.ID, conn.TargetPortID)
		if !okSp || !okTp {
			ec.Errorf("connection %s:%s -> %s:%s references a missing port",
				conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
			continue
		}
		if sp.Type != PortCommunication || tp.Type != PortCommunication {
			ec.Errorf("connection %s:%s -> %s:%s joins non-communication ports",
				conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
			continue
		}
		if sp.Subtype != SubtypeNominal || tp.Subtype != SubtypeConjugate {
			ec.Errorf("connection %s:%s -> %s:%s must run nominal to conjugate",
				conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
		}
		if sp.ProtocolName != tp.ProtocolName {
			ec.Errorf("connection %s:%s -> %s:%s joins protocols %q and %q",
				conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID,
				sp.ProtocolName, tp.ProtocolName)
		}
		used[key(src.ID, sp.ID)]++
		used[key(dst.ID, tp.ID)]++
	}

	for _, conn := range d.Connections {
		if used[key(conn.SourceComponentID, conn.SourcePortID)] > 1 {
			ec.Errorf("port %s:%s participates in more than one connection", conn.SourceComponentID, conn.SourcePortID)
			used[key(conn.SourceComponentID, conn.SourcePortID)] = 1
		}
		if used[key(conn.TargetComponentID, conn.TargetPortID)] > 1 {
			ec.Errorf("port %s:%s participates in more than one connection", conn.TargetComponentID, conn.TargetPortID)
			used[key(conn.TargetComponentID, conn.TargetPortID)] = 1
		}
	}
}
