package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedBackoff(t *testing.T) {
	b, err := NewFixedBackoff(5)
	assert.Nil(t, err)
	for _, rc := range []int{0, 1, 7} {
		assert.Equal(t, 5*time.Second, b.Delay(rc))
	}

	_, err = NewFixedBackoff(-1)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "-1")
}

func TestStepBackoff(t *testing.T) {
	b, err := NewStepBackoff([]int{1, 5, 10})
	assert.Nil(t, err)
	testCases := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 1 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		// 超出序列长度复用最后一个元素
		{5, 10 * time.Second},
		{-1, 1 * time.Second},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, b.Delay(tc.retryCount))
	}
}

func TestStepBackoffInvalid(t *testing.T) {
	_, err := NewStepBackoff(nil)
	assert.NotNil(t, err)
	_, err = NewStepBackoff([]int{})
	assert.NotNil(t, err)
	_, err = NewStepBackoff([]int{1, -2})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "-2")
}

func TestExpBackoff(t *testing.T) {
	b, err := NewExpBackoff(1000, 2.0)
	assert.Nil(t, err)
	assert.Equal(t, 1000*time.Millisecond, b.Delay(0))
	assert.Equal(t, 2000*time.Millisecond, b.Delay(1))
	assert.Equal(t, 4000*time.Millisecond, b.Delay(2))

	// 非整数结果向零取整
	b, err = NewExpBackoff(100, 1.5)
	assert.Nil(t, err)
	assert.Equal(t, 337*time.Millisecond, b.Delay(3))

	_, err = NewExpBackoff(-10, 2.0)
	assert.NotNil(t, err)
	_, err = NewExpBackoff(1000, -0.5)
	assert.NotNil(t, err)
}

func TestParseBackoff(t *testing.T) {
	testCases := []struct {
		name       string
		value      any
		retryCount int
		want       time.Duration
		wantErr    string
	}{
		{
			name:       "scalar seconds",
			value:      5,
			retryCount: 3,
			want:       5 * time.Second,
		},
		{
			name:       "scalar from config",
			value:      float64(2),
			retryCount: 0,
			want:       2 * time.Second,
		},
		{
			name:       "sequence",
			value:      []int{1, 5, 10},
			retryCount: 5,
			want:       10 * time.Second,
		},
		{
			name:       "sequence from config",
			value:      []any{float64(1), float64(2)},
			retryCount: 1,
			want:       2 * time.Second,
		},
		{
			name:       "exponential from config",
			value:      map[string]any{"initialDelay": float64(1000), "delayMultiplier": float64(2)},
			retryCount: 2,
			want:       4 * time.Second,
		},
		{
			name:    "nil",
			value:   nil,
			wantErr: "must not be nil",
		},
		{
			name:    "fractional scalar",
			value:   2.5,
			wantErr: "got 2.5 (float64)",
		},
		{
			name:    "empty sequence",
			value:   []any{},
			wantErr: "must not be empty",
		},
		{
			name:    "non-integer element",
			value:   []any{float64(1), "fast"},
			wantErr: "got fast (string)",
		},
		{
			name:    "negative element",
			value:   []int{1, -2},
			wantErr: "got -2",
		},
		{
			name:    "missing multiplier",
			value:   map[string]any{"initialDelay": float64(1000)},
			wantErr: "delayMultiplier must be a number",
		},
		{
			name:    "unsupported type",
			value:   "5s",
			wantErr: "unsupported backoff type string",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBackoff(tc.value)
			if tc.wantErr != "" {
				assert.NotNil(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, b.Delay(tc.retryCount))
		})
	}
}
