// Package id generates the time-ordered int64 identifiers used as primary
// keys across the application: projects, activity records, notifications
// and live stream connections all share the same generator.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	gen  *snowflake.Node
	once sync.Once
)

// Init configures the process-wide snowflake node. Only the first call has
// any effect; later calls are no-ops, so test setup can call it repeatedly
// without reconfiguring the node.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		gen, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the next identifier. IDs sort by creation time and stay
// unique across instances as long as each instance gets its own node ID.
func New() int64 {
	return gen.Generate().Int64()
}
