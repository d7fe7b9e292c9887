/*
Package tubemesh generates structured tube meshes over a network of path
segments, resolving the junctions where 2, 3 or 4 segments meet.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.

# Overview

Every network segment becomes a tube: rings of nodes around the path,
repeated along it. Where 2 segments meet, their end rings are blended and
shared. Where 3 or 4 segments meet, each tube is trimmed against the others
and a junction rim is inserted which bridges the tubes with matching
connectivity around.

Generation runs in two passes. The first pass computes trim surfaces for
all junctions from the raw (untrimmed) tubes. The second pass samples every
segment against its trim surfaces, resolves junction rims, and emits nodes
and elements through an emit.Emitter, junction rims first.

	nw, _ := network.Parse("1-2,2-3,2-4")
	nw.SetDefaultParameters(0.1)
	b, _ := tubemesh.NewBuilder(nw, tubemesh.DefaultOptions())
	result, err := b.Generate(emit.NewRecorder())

Failures local to a junction or a segment are collected in the result;
the rest of the network is still generated.
*/
package tubemesh

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tubenet.mesh'
func tracer() tracing.Trace {
	return tracing.Select("tubenet.mesh")
}
