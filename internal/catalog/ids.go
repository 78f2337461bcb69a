package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order id prefixes distinguish manual from automatic replenishment orders.
const (
	ManualOrderPrefix     = "ORD"
	ProductionOrderPrefix = "PROD"
	RequestPrefix         = "REQ"
)

// NewOrderID returns "<prefix>-XXXXXXXX" with a random 8-hex-digit suffix.
func NewOrderID(prefix string) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(raw[:8]))
}

// NewRequestID returns a timestamp-derived request log id.
func NewRequestID(ts time.Time) string {
	return fmt.Sprintf("%s-%s", RequestPrefix, ts.Format("20060102150405"))
}
