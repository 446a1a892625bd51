package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teandr/crawler/clock"
	"github.com/teandr/crawler/collect"
)

func newTestSchedule(t *testing.T) (*Schedule, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewSchedule(WithClock(fake)), fake
}

func req(url string) *collect.Request {
	return &collect.Request{Url: url, Method: "GET"}
}

func TestScheduleRoundTrip(t *testing.T) {
	s, fake := newTestSchedule(t)
	s.PushDelayed(req("https://example.com"), 5*time.Second)

	// 未到期之前取不到
	assert.Empty(t, s.NextRequests(10))
	fake.Advance(4 * time.Second)
	assert.Empty(t, s.NextRequests(10))
	assert.Equal(t, 1, s.Len())

	fake.Advance(1 * time.Second)
	got := s.NextRequests(10)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "https://example.com", got[0].Url)

	// 取走即消失，不会二次返回
	assert.Empty(t, s.NextRequests(10))
	assert.True(t, s.Empty())
}

func TestScheduleFIFO(t *testing.T) {
	s, _ := newTestSchedule(t)
	for i := 0; i < 5; i++ {
		s.Push(req(fmt.Sprintf("https://example.com/%d", i)))
	}

	got := s.NextRequests(10)
	assert.Equal(t, 5, len(got))
	for i, r := range got {
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), r.Url)
	}
}

func TestScheduleLimit(t *testing.T) {
	s, _ := newTestSchedule(t)
	for i := 0; i < 5; i++ {
		s.Push(req(fmt.Sprintf("https://example.com/%d", i)))
	}

	first := s.NextRequests(2)
	assert.Equal(t, 2, len(first))
	assert.Equal(t, "https://example.com/0", first[0].Url)
	assert.Equal(t, "https://example.com/1", first[1].Url)
	assert.Equal(t, 3, s.Len())

	second := s.NextRequests(2)
	assert.Equal(t, "https://example.com/2", second[0].Url)
	assert.Equal(t, "https://example.com/3", second[1].Url)

	assert.Empty(t, s.NextRequests(0))
	assert.Equal(t, 1, s.Len())
}

func TestSchedulePartialReady(t *testing.T) {
	s, fake := newTestSchedule(t)
	s.PushDelayed(req("https://example.com/slow"), 10*time.Second)
	s.Push(req("https://example.com/now"))
	s.PushDelayed(req("https://example.com/soon"), 1*time.Second)

	got := s.NextRequests(10)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "https://example.com/now", got[0].Url)

	fake.Advance(time.Second)
	got = s.NextRequests(10)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "https://example.com/soon", got[0].Url)

	fake.Advance(9 * time.Second)
	got = s.NextRequests(10)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "https://example.com/slow", got[0].Url)
	assert.True(t, s.Empty())
}

func TestScheduleNegativeDelay(t *testing.T) {
	s, _ := newTestSchedule(t)
	s.PushDelayed(req("https://example.com"), -3*time.Second)

	got := s.NextRequests(1)
	assert.Equal(t, 1, len(got))
}

func TestScheduleZeroDelayImmediatelyReady(t *testing.T) {
	s, _ := newTestSchedule(t)
	s.PushDelayed(req("https://example.com"), 0)
	assert.Equal(t, 1, len(s.NextRequests(1)))
}

func TestScheduleConcurrentPush(t *testing.T) {
	s := NewSchedule()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Push(req(fmt.Sprintf("https://example.com/%d/%d", n, j)))
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		batch := s.NextRequests(64)
		if len(batch) == 0 {
			break
		}
		for _, r := range batch {
			assert.False(t, seen[r.Url])
			seen[r.Url] = true
		}
	}
	assert.Equal(t, 1000, len(seen))
	assert.True(t, s.Empty())
}
