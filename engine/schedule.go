package engine

import (
	"sync"
	"time"

	"github.com/teandr/crawler/clock"
	"github.com/teandr/crawler/collect"
	"go.uber.org/zap"
)

// Schedule
// 1.接收请求并记录最早可派发时间：Push立即可派发，PushDelayed到期后可派发
// 2.NextRequests取走已到期的请求，同一时刻到期的按入队顺序释放
// 3.Push与NextRequests由同一把互斥锁串行化，worker与派发循环可并发调用
// 4.纯内存结构，不做任何IO，请求一经取走即从存储中消失
type Schedule struct {
	mu      sync.Mutex
	entries []scheduledEntry
	clock   clock.Clock
	logger  *zap.Logger
}

// scheduledEntry 请求与其最早可派发时间
type scheduledEntry struct {
	req     *collect.Request
	readyAt time.Time
}

type ScheduleOption func(s *Schedule)

func WithClock(c clock.Clock) ScheduleOption {
	return func(s *Schedule) {
		s.clock = c
	}
}

func WithScheduleLogger(logger *zap.Logger) ScheduleOption {
	return func(s *Schedule) {
		s.logger = logger
	}
}

func NewSchedule(opts ...ScheduleOption) *Schedule {
	s := &Schedule{
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Push 请求立即可派发
func (s *Schedule) Push(reqs ...*collect.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for _, req := range reqs {
		s.entries = append(s.entries, scheduledEntry{req: req, readyAt: now})
	}
}

// PushDelayed 请求在delay之后可派发，负延迟按零处理
func (s *Schedule) PushDelayed(req *collect.Request, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, scheduledEntry{req: req, readyAt: s.clock.Now().Add(delay)})
}

// NextRequests 取出最多limit个已到期的请求，按入队顺序返回，
// 未到期的保持原位；没有到期请求时返回空集，从不报错
func (s *Schedule) NextRequests(limit int) []*collect.Request {
	if limit <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	var ready []*collect.Request
	kept := s.entries[:0]
	for _, e := range s.entries {
		if len(ready) < limit && !e.readyAt.After(now) {
			ready = append(ready, e.req)
			continue
		}
		kept = append(kept, e)
	}
	// 清理尾部残留的请求引用
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = scheduledEntry{}
	}
	s.entries = kept

	return ready
}

func (s *Schedule) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Schedule) Empty() bool {
	return s.Len() == 0
}
