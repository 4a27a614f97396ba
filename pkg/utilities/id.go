package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewRequestID generates a KSUID string used to correlate log lines of a
// single HTTP request.
func NewRequestID() string {
	return ksuid.New().String()
}

var (
	orderNode     *snowflake.Node
	orderNodeOnce sync.Once
)

// NewOrderNumber generates a snowflake-based order number. The node is
// initialized once and reused so the per-millisecond sequence counter keeps
// numbers unique within a burst. The node ID comes from the environment
// variable SNOWFLAKE_NODE (default 1); if node setup fails it falls back to
// KSUID strings so a unique number is always returned.
func NewOrderNumber() string {
	orderNodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = n
			}
		}
		if n, err := snowflake.NewNode(nodeID); err == nil {
			orderNode = n
		}
	})
	if orderNode == nil {
		return ksuid.New().String()
	}
	return orderNode.Generate().String()
}
