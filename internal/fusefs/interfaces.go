package fusefs

import (
	"bazil.org/fuse/fs"
)

// Directory is everything a directory node serves.
type Directory interface {
	fs.Node
	fs.NodeStringLookuper
	fs.HandleReadDirAller
	fs.NodeMkdirer
	fs.NodeCreater
	fs.NodeRemover
	fs.NodeRenamer
}

// Regular is everything a writable file node serves. The node doubles as
// its own handle.
type Regular interface {
	fs.Node
	fs.NodeSetattrer
	fs.NodeFsyncer
	fs.HandleReadAller
	fs.HandleWriter
}

// ReadOnly is a file node that can only be read.
type ReadOnly interface {
	fs.Node
	fs.HandleReadAller
}

var (
	_ Directory = (*Dir)(nil)
	_ Regular   = (*File)(nil)
	_ ReadOnly  = (*AppNode)(nil)
)
