package host

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testRoot = "testdata/proc"
	testPID  = 4242
)

func TestTotalMemory(t *testing.T) {
	h, err := NewFromRoot(testRoot, testPID, 4096)
	require.NoError(t, err)

	total, err := h.TotalMemory()
	require.NoError(t, err)
	require.Equal(t, uint64(16291508*1024), total)
	require.Equal(t, uint64(4096), h.PageSize())
}

func TestUsage(t *testing.T) {
	h, err := NewFromRoot(testRoot, testPID, 4096)
	require.NoError(t, err)

	u, err := h.Usage()
	require.NoError(t, err)
	require.Equal(t, uint64(5036020*1024), u.Resident)
	require.Equal(t, uint64(5033164*1024), u.Locked)
}

func TestUsageUnknownProcess(t *testing.T) {
	h, err := NewFromRoot(testRoot, 1, 4096)
	require.NoError(t, err)

	_, err = h.Usage()
	require.Error(t, err)
}

func TestDefaultPageSize(t *testing.T) {
	h, err := NewFromRoot(testRoot, testPID, 0)
	require.NoError(t, err)
	require.NotZero(t, h.PageSize())
}

func TestLimitAllows(t *testing.T) {
	tests := []struct {
		name  string
		limit Limit
		size  uint64
		want  bool
	}{
		{"unlimited", Limit{Unlimited: true}, 1 << 40, true},
		{"below", Limit{Current: 8 << 20}, 4 << 20, true},
		{"equal", Limit{Current: 8 << 20}, 8 << 20, true},
		{"above", Limit{Current: 64 << 10}, 8 << 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.limit.Allows(tt.size))
		})
	}
}
