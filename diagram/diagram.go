// Package diagram holds the EDROOM component diagram model: components with
// typed ports, protocol-scoped messages, and the connections joining nominal
// ports to conjugate ones. Every mutation goes through a Diagram method that
// enforces the model invariants up front; a rejected change leaves the
// diagram exactly as it was.
package diagram

import (
	"fmt"
)

// Diagram is the aggregate the editor mutates and the generators read.
type Diagram struct {
	Name        string
	Components  []*Component
	Connections []Connection

	// TopComponentID points at the single distinguished root component of
	// the system, empty when none is marked. Holding one reference here
	// instead of a boolean on every component makes the at-most-one
	// invariant structural rather than enforced by scan-and-clear.
	TopComponentID string
}

// New returns an empty diagram.
func New(name string) *Diagram {
	return &Diagram{Name: name}
}

// Component looks up a component by id. Returns nil when absent.
func (d *Diagram) Component(id string) *Component {
	for _, c := range d.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AddComponent validates c, including any inline ports and messages, and
// appends it. The stored component is a copy; later changes to c are not
// seen by the diagram.
func (d *Diagram) AddComponent(c *Component) error {
	if c == nil {
		return fmt.Errorf("%w: component is nil", ErrInvalidField)
	}
	if err := d.checkComponent(c, ""); err != nil {
		return err
	}

	staged := *c
	staged.Ports = nil
	for _, p := range c.Ports {
		p.Messages = append([]Message(nil), p.Messages...)
		if err := d.checkPort(&staged, p); err != nil {
			return fmt.Errorf("port %q: %w", p.ID, err)
		}
		staged.Ports = append(staged.Ports, p)
	}
	if staged.Priority == "" {
		staged.Priority = PrioNormal
	}
	d.Components = append(d.Components, &staged)
	return nil
}

// UpdateComponent replaces the scalar fields of the component matching
// c.ID. Ports are managed through AddPort/RemovePort and are left alone.
func (d *Diagram) UpdateComponent(c *Component) error {
	if c == nil {
		return fmt.Errorf("%w: component is nil", ErrInvalidField)
	}
	existing := d.Component(c.ID)
	if existing == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, c.ID)
	}
	if err := d.checkComponent(c, c.ID); err != nil {
		return err
	}
	existing.Name = c.Name
	existing.ComponentClass = c.ComponentClass
	existing.Node = c.Node
	existing.ComponentID = c.ComponentID
	existing.MaxMessages = c.MaxMessages
	if c.Priority != "" {
		existing.Priority = c.Priority
	}
	existing.StackSize = c.StackSize
	return nil
}

// RemoveComponent deletes a component, every connection touching it, and
// the top mark when it pointed at the component.
func (d *Diagram) RemoveComponent(id string) error {
	idx := -1
	for i, c := range d.Components {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: component %q", ErrNotFound, id)
	}

	kept := d.Connections[:0]
	for _, conn := range d.Connections {
		if conn.SourceComponentID == id || conn.TargetComponentID == id {
			continue
		}
		kept = append(kept, conn)
	}
	d.Connections = kept

	if d.TopComponentID == id {
		d.TopComponentID = ""
	}
	d.Components = append(d.Components[:idx], d.Components[idx+1:]...)
	return nil
}

// SetTop marks componentID as the system's top component. Any previous
// mark is replaced implicitly.
func (d *Diagram) SetTop(componentID string) error {
	if d.Component(componentID) == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, componentID)
	}
	d.TopComponentID = componentID
	return nil
}

// ClearTop removes the top mark.
func (d *Diagram) ClearTop() {
	d.TopComponentID = ""
}

// IsTop reports whether componentID currently holds the top mark.
func (d *Diagram) IsTop(componentID string) bool {
	return componentID != "" && d.TopComponentID == componentID
}

// Top returns the top component, or nil when none is marked.
func (d *Diagram) Top() *Component {
	if d.TopComponentID == "" {
		return nil
	}
	return d.Component(d.TopComponentID)
}

// AddPort validates p against its owning component and the rest of the
// diagram, then appends it to the component's port list.
func (d *Diagram) AddPort(componentID string, p Port) error {
	c := d.Component(componentID)
	if c == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, componentID)
	}
	if err := d.checkPort(c, p); err != nil {
		return err
	}
	c.Ports = append(c.Ports, p)
	return nil
}

// RemovePort deletes a port and every connection using it.
func (d *Diagram) RemovePort(componentID, portID string) error {
	c := d.Component(componentID)
	if c == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, componentID)
	}
	idx := -1
	for i := range c.Ports {
		if c.Ports[i].ID == portID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: port %q on component %q", ErrNotFound, portID, componentID)
	}

	kept := d.Connections[:0]
	for _, conn := range d.Connections {
		if (conn.SourceComponentID == componentID && conn.SourcePortID == portID) ||
			(conn.TargetComponentID == componentID && conn.TargetPortID == portID) {
			continue
		}
		kept = append(kept, conn)
	}
	d.Connections = kept

	c.Ports = append(c.Ports[:idx], c.Ports[idx+1:]...)
	return nil
}

// AddMessage appends m to a communication port after checking the
// protocol-wide invariants: signal uniqueness across every port sharing the
// protocol, and reply pairing rules.
func (d *Diagram) AddMessage(componentID, portID string, m Message) error {
	c := d.Component(componentID)
	if c == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, componentID)
	}
	p := c.Port(portID)
	if p == nil {
		return fmt.Errorf("%w: port %q on component %q", ErrNotFound, portID, componentID)
	}
	if p.Type != PortCommunication {
		return fmt.Errorf("%w: port %q is not a communication port", ErrInvalidField, portID)
	}
	pool := d.protocolMessages(p.ProtocolName, nil)
	if err := checkMessage(pool, m); err != nil {
		return err
	}
	p.Messages = append(p.Messages, m)
	return nil
}

// RemoveMessage deletes the message with the given signal from a port.
// Deleting an invoke also deletes its paired reply, wherever in the
// protocol that reply was declared, as one operation.
func (d *Diagram) RemoveMessage(componentID, portID, signal string) error {
	c := d.Component(componentID)
	if c == nil {
		return fmt.Errorf("%w: component %q", ErrNotFound, componentID)
	}
	p := c.Port(portID)
	if p == nil {
		return fmt.Errorf("%w: port %q on component %q", ErrNotFound, portID, componentID)
	}
	idx := -1
	for i := range p.Messages {
		if p.Messages[i].Signal == signal {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: signal %q on port %q", ErrNotFound, signal, portID)
	}

	removed := p.Messages[idx]
	p.Messages = append(p.Messages[:idx], p.Messages[idx+1:]...)
	if removed.Kind == KindInvoke {
		d.removeProtocolReply(p.ProtocolName, removed.Signal)
	}
	return nil
}

// Connect adds an edge after checking the endpoint rules: existing
// communication ports, nominal source, conjugate target, one shared
// protocol, and at most one connection per port.
func (d *Diagram) Connect(conn Connection) error {
	src := d.Component(conn.SourceComponentID)
	if src == nil {
		return fmt.Errorf("%w: source component %q", ErrNotFound, conn.SourceComponentID)
	}
	dst := d.Component(conn.TargetComponentID)
	if dst == nil {
		return fmt.Errorf("%w: target component %q", ErrNotFound, conn.TargetComponentID)
	}
	sp := src.Port(conn.SourcePortID)
	if sp == nil {
		return fmt.Errorf("%w: source port %q", ErrNotFound, conn.SourcePortID)
	}
	tp := dst.Port(conn.TargetPortID)
	if tp == nil {
		return fmt.Errorf("%w: target port %q", ErrNotFound, conn.TargetPortID)
	}
	if sp.Type != PortCommunication || tp.Type != PortCommunication {
		return fmt.Errorf("%w: both endpoints must be communication ports", ErrEndpointMismatch)
	}
	if sp.Subtype != SubtypeNominal {
		return fmt.Errorf("%w: source port %q must be nominal", ErrEndpointMismatch, sp.Name)
	}
	if tp.Subtype != SubtypeConjugate {
		return fmt.Errorf("%w: target port %q must be conjugate", ErrEndpointMismatch, tp.Name)
	}
	if sp.ProtocolName != tp.ProtocolName {
		return fmt.Errorf("%w: protocols %q and %q differ", ErrEndpointMismatch, sp.ProtocolName, tp.ProtocolName)
	}
	if d.PortConnected(conn.SourceComponentID, conn.SourcePortID) {
		return fmt.Errorf("%w: source port %q", ErrPortConnected, sp.Name)
	}
	if d.PortConnected(conn.TargetComponentID, conn.TargetPortID) {
		return fmt.Errorf("%w: target port %q", ErrPortConnected, tp.Name)
	}
	d.Connections = append(d.Connections, conn)
	return nil
}

// Disconnect removes the exact edge, matched by all four endpoint fields.
func (d *Diagram) Disconnect(conn Connection) error {
	for i, existing := range d.Connections {
		if existing == conn {
			d.Connections = append(d.Connections[:i], d.Connections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: connection %s:%s -> %s:%s", ErrNotFound,
		conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
}

// PortConnected reports whether a port already participates in an edge.
func (d *Diagram) PortConnected(componentID, portID string) bool {
	for _, conn := range d.Connections {
		if conn.SourceComponentID == componentID && conn.SourcePortID == portID {
			return true
		}
		if conn.TargetComponentID == componentID && conn.TargetPortID == portID {
			return true
		}
	}
	return false
}

// --- Invariant checks shared by the mutators ---

func (d *Diagram) checkComponent(c *Component, ignoreID string) error {
	if c.ID == "" {
		return fmt.Errorf("%w: component id is empty", ErrInvalidField)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: component name is empty", ErrInvalidField)
	}
	if c.ComponentID <= 0 {
		return fmt.Errorf("%w: componentId must be a positive integer", ErrInvalidField)
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("%w: maxMessages must be positive", ErrInvalidField)
	}
	if c.StackSize <= 0 {
		return fmt.Errorf("%w: stackSize must be positive", ErrInvalidField)
	}
	if c.Priority != "" && !c.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidField, c.Priority)
	}
	for _, other := range d.Components {
		if other.ID == ignoreID {
			continue
		}
		if other.ID == c.ID {
			return fmt.Errorf("%w: component %q", ErrDuplicateID, c.ID)
		}
		if other.Name == c.Name {
			return fmt.Errorf("%w: component %q", ErrDuplicateName, c.Name)
		}
		if other.ComponentID == c.ComponentID {
			return fmt.Errorf("%w: componentId %d already used by %q", ErrDuplicateID, c.ComponentID, other.ID)
		}
	}
	return nil
}

// checkPort validates p for membership in c. For AddComponent, c is the
// staged copy whose earlier ports have already been accepted.
func (d *Diagram) checkPort(c *Component, p Port) error {
	if !numericID(p.ID) {
		return fmt.Errorf("%w: %q", ErrPortNotNumeric, p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: port name is empty", ErrInvalidField)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown port type %q", ErrInvalidField, p.Type)
	}
	for i := range c.Ports {
		if c.Ports[i].ID == p.ID {
			return fmt.Errorf("%w: port %q", ErrDuplicateID, p.ID)
		}
		if c.Ports[i].Name == p.Name {
			return fmt.Errorf("%w: port %q", ErrDuplicateName, p.Name)
		}
	}
	if p.Type == PortCommunication {
		if !p.Subtype.Valid() {
			return fmt.Errorf("%w: communication port needs a nominal or conjugate subtype", ErrInvalidField)
		}
		// Messages check sequentially so a reply may follow its invoke
		// within the same port declaration.
		pool := d.protocolMessages(p.ProtocolName, c)
		for _, m := range p.Messages {
			if err := checkMessage(pool, m); err != nil {
				return err
			}
			mm := m
			pool = append(pool, &mm)
		}
	}
	return nil
}

func checkMessage(pool []*Message, m Message) error {
	if m.Signal == "" {
		return fmt.Errorf("%w: message signal is empty", ErrInvalidField)
	}
	if !m.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidField, m.Direction)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown message kind %q", ErrInvalidField, m.Kind)
	}
	for _, existing := range pool {
		if existing.Signal == m.Signal {
			return fmt.Errorf("%w: signal %q already declared in this protocol", ErrDuplicateSignal, m.Signal)
		}
	}
	if m.Kind == KindReply {
		var invoke *Message
		for _, existing := range pool {
			if existing.Kind == KindInvoke && existing.Signal == m.InvokeSignal {
				invoke = existing
				break
			}
		}
		if invoke == nil {
			return fmt.Errorf("%w: invoke %q", ErrDanglingReply, m.InvokeSignal)
		}
		if m.Direction != invoke.Direction.Opposite() {
			return fmt.Errorf("%w: reply %q must carry the direction opposite to invoke %q",
				ErrInvalidField, m.Signal, m.InvokeSignal)
		}
		for _, existing := range pool {
			if existing.Kind == KindReply && existing.InvokeSignal == m.InvokeSignal {
				return fmt.Errorf("%w: invoke %q already has reply %q", ErrInvalidField, m.InvokeSignal, existing.Signal)
			}
		}
	}
	return nil
}

// protocolMessages flattens every message declared for protocol across the
// whole diagram. When staged is non-nil and not yet part of the diagram its
// ports are included too.
func (d *Diagram) protocolMessages(protocol string, staged *Component) []*Message {
	var out []*Message
	collect := func(c *Component) {
		for i := range c.Ports {
			p := &c.Ports[i]
			if p.Type != PortCommunication || p.ProtocolName != protocol {
				continue
			}
			for j := range p.Messages {
				out = append(out, &p.Messages[j])
			}
		}
	}
	inDiagram := false
	for _, c := range d.Components {
		if c == staged {
			inDiagram = true
		}
		collect(c)
	}
	if staged != nil && !inDiagram {
		collect(staged)
	}
	return out
}

// removeProtocolReply drops the reply paired with invokeSignal, searching
// every port that shares the protocol. At most one exists.
func (d *Diagram) removeProtocolReply(protocol, invokeSignal string) {
	for _, c := range d.Components {
		for i := range c.Ports {
			p := &c.Ports[i]
			if p.Type != PortCommunication || p.ProtocolName != protocol {
				continue
			}
			for j := range p.Messages {
				if p.Messages[j].Kind == KindReply && p.Messages[j].InvokeSignal == invokeSignal {
					p.Messages = append(p.Messages[:j], p.Messages[j+1:]...)
					return
				}
			}
		}
	}
}

func numericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
