package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/panyam/connectus/diagram"
)

// Deployment emits the glue artifacts for one logical node. The lookup
// index and the namer are built once per generation pass and shared by the
// header, source, and main emitters.
type Deployment struct {
	d     *diagram.Diagram
	ix    *diagram.Index
	namer *Namer
	node  string
}

// NewDeployment builds a generator for one target node over an immutable
// diagram snapshot.
func NewDeployment(d *diagram.Diagram, node string) *Deployment {
	return &Deployment{
		d:     d,
		ix:    diagram.NewIndex(d),
		namer: NewNamer(d, node),
		node:  node,
	}
}

// wiredConnection is a resolved edge touching the target node.
type wiredConnection struct {
	src     *diagram.Component
	dst     *diagram.Component
	srcPort *diagram.Port
	dstPort *diagram.Port

	// local is true when both endpoints live on the target node.
	local bool
}

// connections resolves the edges relevant to the node in insertion order.
// Dangling edges come back as notes instead of failing the run.
func (g *Deployment) connections() (wired []wiredConnection, skipped []string) {
	for _, conn := range g.d.Connections {
		srcC, okSrc := g.ix.Component(conn.SourceComponentID)
		dstC, okDst := g.ix.Component(conn.TargetComponentID)
		if !okSrc || !okDst {
			skipped = append(skipped, danglingNote(conn))
			continue
		}
		srcNode, dstNode := EffectiveNode(srcC), EffectiveNode(dstC)
		if srcNode != g.node && dstNode != g.node {
			continue
		}
		srcP, okSp := g.ix.Port(srcC.ID, conn.SourcePortID)
		dstP, okTp := g.ix.Port(dstC.ID, conn.TargetPortID)
		if !okSp || !okTp {
			skipped = append(skipped, danglingNote(conn))
			continue
		}
		wired = append(wired, wiredConnection{
			src: srcC, dst: dstC, srcPort: srcP, dstPort: dstP,
			local: srcNode == dstNode,
		})
	}
	return wired, skipped
}

// configParams lists the constructor-style Config parameters, one per
// component in component-list order, never sorted.
func (g *Deployment) configParams() []string {
	var out []string
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		out = append(out, fmt.Sprintf("%s *%s", names.Class, names.Instance))
	}
	return out
}

// Header emits the deployment header: interface includes for every
// component in the diagram (remote ones included), the sized memory pools,
// the aggregate structs, the signal conversion declarations, and the
// deployment class with its two connection counts.
func (g *Deployment) Header() (string, error) {
	wired, _ := g.connections()
	nLocal, nRemote := 0, 0
	for _, w := range wired {
		if w.local {
			nLocal++
		} else {
			nRemote++
		}
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// EDROOM deployment glue for logical node %q.\n", g.node)
	b.WriteString("// Generated by connectus, do not edit by hand.\n\n")
	b.WriteString("#ifndef EDROOM_GLUE_EDROOMDEPLOYMENT_H\n")
	b.WriteString("#define EDROOM_GLUE_EDROOMDEPLOYMENT_H\n\n")
	b.WriteString("#include <public/edroombp.h>\n")

	b.WriteString("\n// *** component interface headers ***\n")
	for _, c := range g.d.Components {
		fmt.Fprintf(&b, "#include <public/%s>\n", g.namer.Include(c))
	}

	b.WriteString("\n// *** system memory ***\n")
	b.WriteString("struct CEDROOMSystemMemory {\n")
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		queue := QueueSize(c)
		fmt.Fprintf(&b, "\n\t// %s %s\n", names.Class, names.Instance)
		fmt.Fprintf(&b, "\tCEDROOMMessage %sMessages[%d];\n", names.Instance, c.MaxMessages)
		fmt.Fprintf(&b, "\tbool %sMessagesMarks[%d];\n", names.Instance, c.MaxMessages)
		fmt.Fprintf(&b, "\tCEDROOMQueue::CQueueNode %sQueueNodes[%d];\n", names.Instance, queue)
		fmt.Fprintf(&b, "\tbool %sQueueNodesMarks[%d];\n", names.Instance, queue)
		fmt.Fprintf(&b, "\t%s::CEDROOMMemory %sMemory;\n", names.Class, names.Instance)
	}
	b.WriteString("\n\tvoid SetMemory();\n")
	b.WriteString("};\n")

	b.WriteString("\n// *** communication service access points ***\n")
	b.WriteString("struct CEDROOMSystemCommSAP {\n")
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		fmt.Fprintf(&b, "\t%s *mp_%s;\n", names.Class, names.Instance)
	}
	b.WriteString("};\n")

	convs, skipped := ConversionsForNode(g.d, g.ix, g.node)
	b.WriteString("\n// *** signal conversion declarations ***\n")
	for _, cv := range convs {
		fmt.Fprintf(&b, "TEDROOMSignal %s(TEDROOMSignal signal);\n", cv.Forward)
		fmt.Fprintf(&b, "TEDROOMSignal %s(TEDROOMSignal signal);\n", cv.Reverse)
	}
	for _, note := range skipped {
		fmt.Fprintf(&b, "// WARNING: %s\n", note)
	}

	b.WriteString("\n// *** system deployment ***\n")
	b.WriteString("class CEDROOMSystemDeployment {\n\npublic:\n\n")
	fmt.Fprintf(&b, "\tenum {\n\t\tkLocalConnections = %d,\n\t\tkRemoteConnections = %d\n\t};\n\n", nLocal, nRemote)
	b.WriteString("\tCEDROOMSystemDeployment();\n\n")
	fmt.Fprintf(&b, "\tvoid Config(%s);\n\n", strings.Join(g.configParams(), ", "))
	b.WriteString("\tvoid StartComponents();\n\n")
	b.WriteString("\tCEDROOMSystemMemory systemMemory;\n")
	b.WriteString("\tCEDROOMSystemCommSAP commSAP;\n")
	if len(g.d.Components) > 0 {
		b.WriteString("\n")
	}
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		fmt.Fprintf(&b, "\t%s *mp_%s;\n", names.Class, names.Instance)
	}
	if nLocal > 0 || nRemote > 0 {
		b.WriteString("\nprivate:\n\n")
		if nLocal > 0 {
			b.WriteString("\tCEDROOMLocalConnection localConnections[kLocalConnections];\n")
		}
		if nRemote > 0 {
			b.WriteString("\tCEDROOMRemoteConnection remoteConnections[kRemoteConnections];\n")
		}
	}
	b.WriteString("};\n")
	b.WriteString("\n#endif // EDROOM_GLUE_EDROOMDEPLOYMENT_H\n")
	return b.String(), nil
}

// Source emits the deployment source: memory pool wiring, constructor,
// Config binding the component instances and the connection arrays, and
// component startup.
func (g *Deployment) Source() (string, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// EDROOM deployment glue for logical node %q.\n", g.node)
	b.WriteString("// Generated by connectus, do not edit by hand.\n\n")
	b.WriteString("#include <edroom_glue/edroomdeployment.h>\n")

	b.WriteString("\nvoid CEDROOMSystemMemory::SetMemory() {\n")
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		queue := QueueSize(c)
		fmt.Fprintf(&b, "\t%sMemory.SetMessageMemory(%sMessages, %sMessagesMarks, %d);\n",
			names.Instance, names.Instance, names.Instance, c.MaxMessages)
		fmt.Fprintf(&b, "\t%sMemory.SetQueueNodeMemory(%sQueueNodes, %sQueueNodesMarks, %d);\n",
			names.Instance, names.Instance, names.Instance, queue)
	}
	b.WriteString("}\n")

	b.WriteString("\nCEDROOMSystemDeployment::CEDROOMSystemDeployment() {\n")
	b.WriteString("\tsystemMemory.SetMemory();\n")
	for _, c := range g.d.Components {
		fmt.Fprintf(&b, "\tmp_%s = 0;\n", g.namer.Names(c).Instance)
	}
	b.WriteString("}\n")

	fmt.Fprintf(&b, "\nvoid CEDROOMSystemDeployment::Config(%s) {\n", strings.Join(g.configParams(), ", "))
	for _, c := range g.d.Components {
		inst := g.namer.Names(c).Instance
		fmt.Fprintf(&b, "\tmp_%s = %s;\n", inst, inst)
	}
	for _, c := range g.d.Components {
		inst := g.namer.Names(c).Instance
		fmt.Fprintf(&b, "\tcommSAP.mp_%s = %s;\n", inst, inst)
	}

	wired, skipped := g.connections()
	if len(wired) > 0 || len(skipped) > 0 {
		b.WriteString("\n")
	}
	li, ri := 0, 0
	for _, w := range wired {
		srcRef := fmt.Sprintf("&%s->%s", g.namer.Names(w.src).Instance, stripSpace(w.srcPort.Name))
		dstRef := fmt.Sprintf("&%s->%s", g.namer.Names(w.dst).Instance, stripSpace(w.dstPort.Name))
		if w.local {
			fmt.Fprintf(&b, "\tlocalConnections[%d].Connect(%s, %s);\n", li, srcRef, dstRef)
			li++
		} else {
			fmt.Fprintf(&b, "\tremoteConnections[%d].Connect(%s, %s);\n", ri, srcRef, dstRef)
			ri++
		}
	}
	for _, note := range skipped {
		fmt.Fprintf(&b, "\t// WARNING: %s\n", note)
	}
	b.WriteString("}\n")

	b.WriteString("\nvoid CEDROOMSystemDeployment::StartComponents() {\n")
	for _, c := range g.d.Components {
		fmt.Fprintf(&b, "\tmp_%s->EDROOMStart();\n", g.namer.Names(c).Instance)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// Main emits the node's project file: one static instance per component,
// built with its priority, stack size, and memory pool, then configured
// and started from main.
func (g *Deployment) Main() (string, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Main project file for logical node %q.\n", g.node)
	b.WriteString("// Generated by connectus, do not edit by hand.\n\n")
	b.WriteString("#include <edroom_glue/edroomdeployment.h>\n\n")
	b.WriteString("CEDROOMSystemDeployment systemDeployment;\n")

	if len(g.d.Components) > 0 {
		b.WriteString("\n")
	}
	var args []string
	for _, c := range g.d.Components {
		names := g.namer.Names(c)
		fmt.Fprintf(&b, "%s %s(%s, %d, &systemDeployment.systemMemory.%sMemory);\n",
			names.Class, names.Instance, c.Priority, c.StackSize, names.Instance)
		args = append(args, "&"+names.Instance)
	}

	b.WriteString("\nint main() {\n")
	fmt.Fprintf(&b, "\tsystemDeployment.Config(%s);\n", strings.Join(args, ", "))
	b.WriteString("\tsystemDeployment.StartComponents();\n")
	b.WriteString("\treturn 0;\n")
	b.WriteString("}\n")
	return b.String(), nil
}
