package ports

import "time"

type TickMetrics interface {
	RecordTick(elapsed time.Duration)
	RecordHalt()
}
