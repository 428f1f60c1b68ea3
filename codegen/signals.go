package codegen

import (
	"fmt"

	"github.com/panyam/connectus/diagram"
)

// Conversion is the pair of signal-translation declarations one connection
// contributes: one function per direction. The declarations have no bodies;
// actual signal-value mapping happens at build time in the glue the user
// supplies.
type Conversion struct {
	Forward string
	Reverse string
}

// ConversionName builds the translation function name for one direction of
// a connection. Every fragment is whitespace-stripped.
func ConversionName(srcC *diagram.Component, srcP *diagram.Port, dstC *diagram.Component, dstP *diagram.Port) string {
	return fmt.Sprintf("C%d%s_P%s__C%d%s_P%s",
		srcC.ComponentID, stripSpace(srcC.Name), stripSpace(srcP.Name),
		dstC.ComponentID, stripSpace(dstC.Name), stripSpace(dstP.Name))
}

// ConversionsForNode walks the connection list in insertion order and
// returns the conversion pairs for every connection touching node. Edges
// whose endpoints no longer resolve are skipped; each skip is reported as a
// note for the emitter to surface as a comment instead of failing the run.
func ConversionsForNode(d *diagram.Diagram, ix *diagram.Index, node string) (convs []Conversion, skipped []string) {
	for _, conn := range d.Connections {
		srcC, okSrc := ix.Component(conn.SourceComponentID)
		dstC, okDst := ix.Component(conn.TargetComponentID)
		if !okSrc || !okDst {
			skipped = append(skipped, danglingNote(conn))
			continue
		}
		if EffectiveNode(srcC) != node && EffectiveNode(dstC) != node {
			continue
		}
		srcP, okSp := ix.Port(srcC.ID, conn.SourcePortID)
		dstP, okTp := ix.Port(dstC.ID, conn.TargetPortID)
		if !okSp || !okTp {
			skipped = append(skipped, danglingNote(conn))
			continue
		}
		convs = append(convs, Conversion{
			Forward: ConversionName(srcC, srcP, dstC, dstP),
			Reverse: ConversionName(dstC, dstP, srcC, srcP),
		})
	}
	return convs, skipped
}

func danglingNote(conn diagram.Connection) string {
	return fmt.Sprintf("connection %s:%s -> %s:%s skipped (missing component or port)",
		conn.SourceComponentID, conn.SourcePortID, conn.TargetComponentID, conn.TargetPortID)
}
