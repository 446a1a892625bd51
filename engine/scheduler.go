package engine

import (
	"time"

	"github.com/teandr/crawler/collect"
)

type Scheduler interface {
	Push(...*collect.Request)
	PushDelayed(req *collect.Request, delay time.Duration)
	NextRequests(limit int) []*collect.Request
	Len() int
	Empty() bool
}
