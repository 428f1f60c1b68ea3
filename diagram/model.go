package diagram

// --- Entity enumerations ---

// PortType classifies what a port is for.
type PortType string

const (
	PortCommunication PortType = "communication"
	PortTiming        PortType = "timing"
	PortInterrupt     PortType = "interrupt"
)

// Valid reports whether t is one of the known port types.
func (t PortType) Valid() bool {
	switch t {
	case PortCommunication, PortTiming, PortInterrupt:
		return true
	}
	return false
}

// PortSubtype tells which side of a protocol a communication port plays.
type PortSubtype string

const (
	SubtypeNominal   PortSubtype = "nominal"
	SubtypeConjugate PortSubtype = "conjugate"
)

func (s PortSubtype) Valid() bool {
	return s == SubtypeNominal || s == SubtypeConjugate
}

// Direction of a message, always relative to the nominal side of the protocol.
type Direction string

const (
	DirIn  Direction = "in"
	DirOut Direction = "out"
)

func (d Direction) Valid() bool {
	return d == DirIn || d == DirOut
}

// Opposite returns the reversed direction.
func (d Direction) Opposite() Direction {
	if d == DirIn {
		return DirOut
	}
	return DirIn
}

// MessageKind distinguishes fire-and-forget messages from invoke/reply pairs.
type MessageKind string

const (
	KindInvoke MessageKind = "invoke"
	KindAsync  MessageKind = "async"
	KindReply  MessageKind = "reply"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindInvoke, KindAsync, KindReply:
		return true
	}
	return false
}

// Priority is one of the eight fixed EDROOM scheduling priorities.
type Priority string

const (
	PrioUrgent   Priority = "EDROOMprioURGENT"
	PrioVeryHigh Priority = "EDROOMprioVeryHigh"
	PrioHigh     Priority = "EDROOMprioHigh"
	PrioNormal   Priority = "EDROOMprioNormal"
	PrioLow      Priority = "EDROOMprioLow"
	PrioVeryLow  Priority = "EDROOMprioVeryLow"
	PrioMinimum  Priority = "EDROOMprioMINIMUM"
	PrioIdle     Priority = "EDROOMprioIDLE"
)

// Priorities lists the scheduling priorities in order, most urgent first.
var Priorities = []Priority{
	PrioUrgent, PrioVeryHigh, PrioHigh, PrioNormal,
	PrioLow, PrioVeryLow, PrioMinimum, PrioIdle,
}

func (p Priority) Valid() bool {
	for _, q := range Priorities {
		if p == q {
			return true
		}
	}
	return false
}

// --- Entities ---

// Message is one named signal exchanged over a protocol.
type Message struct {
	Signal    string      `json:"signal"`
	DataType  string      `json:"dataType,omitempty"`
	Direction Direction   `json:"direction"`
	Kind      MessageKind `json:"kind"`

	// InvokeSignal names the invoke this reply answers. Only set when
	// Kind == KindReply.
	InvokeSignal string `json:"invokeSignal,omitempty"`
}

// Port is attached to a component. Communication ports carry a protocol
// and its messages; timing ports carry nothing extra; interrupt ports may
// carry a handler body.
type Port struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type PortType `json:"type"`

	// Communication only.
	Subtype      PortSubtype `json:"subtype,omitempty"`
	ProtocolName string      `json:"protocolName,omitempty"`
	Messages     []Message   `json:"messages,omitempty"`

	// Interrupt only.
	Handler string `json:"handler,omitempty"`
}

// Component is a diagram node: one EDROOM software component assigned to a
// logical deployment node.
type Component struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ComponentClass string   `json:"componentClass,omitempty"`
	Node           string   `json:"node,omitempty"`
	ComponentID    int      `json:"componentId"`
	MaxMessages    int      `json:"maxMessages"`
	Priority       Priority `json:"priority"`
	StackSize      int      `json:"stackSize"`
	Ports          []Port   `json:"ports,omitempty"`
}

// Class returns the declared component class, falling back to the display
// name when none was set.
func (c *Component) Class() string {
	if c.ComponentClass != "" {
		return c.ComponentClass
	}
	return c.Name
}

// Port looks up a port by id. Returns nil when absent.
func (c *Component) Port(portID string) *Port {
	for i := range c.Ports {
		if c.Ports[i].ID == portID {
			return &c.Ports[i]
		}
	}
	return nil
}

// TimingPorts counts the component's timing ports.
func (c *Component) TimingPorts() int {
	n := 0
	for i := range c.Ports {
		if c.Ports[i].Type == PortTiming {
			n++
		}
	}
	return n
}

// Connection is a diagram edge joining a nominal communication port to a
// conjugate one speaking the same protocol.
type Connection struct {
	SourceComponentID string `json:"sourceComponentId"`
	SourcePortID      string `json:"sourcePortId"`
	TargetComponentID string `json:"targetComponentId"`
	TargetPortID      string `json:"targetPortId"`
}
