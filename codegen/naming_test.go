package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/panyam/connectus/diagram"
)

func testComponent(id, name, node string, number int) *diagram.Component {
	return &diagram.Component{
		ID:          id,
		Name:        name,
		Node:        node,
		ComponentID: number,
		MaxMessages: 10,
		Priority:    diagram.PrioNormal,
		StackSize:   2048,
	}
}

// TestNamingTable walks the full 2x2 locality/role table against one
// component and checks that class prefix, include prefix, and instance
// prefix stay in lockstep.
func TestNamingTable(t *testing.T) {
	d := diagram.New("test")
	c := testComponent("1", "Ping Sender", "NodeA", 1)
	assert.NoError(t, d.AddComponent(c))

	t.Log("--- ordinary & local ---")
	names := NewNamer(d, "NodeA").Names(d.Component("1"))
	assert.Equal(t, "CCPingSender", names.Class)
	assert.Equal(t, "cc", names.IncludePrefix)
	assert.Equal(t, "pingsender_1", names.Instance)

	t.Log("--- ordinary & remote ---")
	names = NewNamer(d, "NodeB").Names(d.Component("1"))
	assert.Equal(t, "RCCPingSender", names.Class)
	assert.Equal(t, "rcc", names.IncludePrefix)
	assert.Equal(t, "rpingsender_1", names.Instance)

	assert.NoError(t, d.SetTop("1"))

	t.Log("--- top & local ---")
	names = NewNamer(d, "NodeA").Names(d.Component("1"))
	assert.Equal(t, "PingSender", names.Class, "the top component on its own node keeps the bare class name")
	assert.Equal(t, "", names.IncludePrefix)
	assert.Equal(t, "pingsender_1", names.Instance)

	t.Log("--- top & remote ---")
	names = NewNamer(d, "NodeB").Names(d.Component("1"))
	assert.Equal(t, "RPingSender", names.Class)
	assert.Equal(t, "r", names.IncludePrefix)
	assert.Equal(t, "rpingsender_1", names.Instance)
}

func TestNamingClassFallback(t *testing.T) {
	d := diagram.New("test")
	c := testComponent("1", "Sensor", "NodeA", 3)
	c.ComponentClass = "CSensor Driver"
	assert.NoError(t, d.AddComponent(c))

	names := NewNamer(d, "NodeA").Names(d.Component("1"))
	assert.Equal(t, "CCCSensorDriver", names.Class, "declared class is used, whitespace stripped")
	assert.Equal(t, "sensor_3", names.Instance, "instance name always derives from the display name")
}

func TestNamingInclude(t *testing.T) {
	d := diagram.New("test")
	assert.NoError(t, d.AddComponent(testComponent("1", "Ping Sender", "NodeA", 1)))

	n := NewNamer(d, "NodeA")
	assert.Equal(t, "ccpingsender_iface.h", n.Include(d.Component("1")))

	n = NewNamer(d, "NodeB")
	assert.Equal(t, "rccpingsender_iface.h", n.Include(d.Component("1")))
}

func TestEffectiveNode(t *testing.T) {
	assert.Equal(t, "NodeA", EffectiveNode(testComponent("1", "A", "NodeA", 1)))
	assert.Equal(t, DefaultNode, EffectiveNode(testComponent("2", "B", "", 2)),
		"components without an assignment deploy to the default node")
}
