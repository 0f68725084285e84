package affinity

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	topo := Detect()
	assert.Greater(t, topo.LogicalCores, 0)
	assert.Greater(t, topo.PhysicalCores, 0)
	assert.GreaterOrEqual(t, topo.ThreadsPerCore, 1)
	require.NotEmpty(t, topo.CPUs)
	assert.Equal(t, len(topo.CPUs), topo.Available())
	assert.ElementsMatch(t, topo.CPUs, topo.Order())
}

func TestAssign(t *testing.T) {
	t.Run("超线程拓扑先占满物理核", func(t *testing.T) {
		// 4 物理核 × 2 线程，兄弟核相差 4：0/4, 1/5, 2/6, 3/7
		topo := Topology{PhysicalCores: 4, ThreadsPerCore: 2, CPUs: []int{0, 1, 2, 3, 4, 5, 6, 7}}
		cores := Assign(8, topo)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, cores)

		seen := map[int]bool{}
		for _, cpu := range cores[:4] {
			key := topo.coreKey(cpu)
			assert.False(t, seen[key], "前 4 个线程落在不同物理核")
			seen[key] = true
		}
	})

	t.Run("相邻编号的兄弟核按系统拓扑分组", func(t *testing.T) {
		topo := Topology{
			PhysicalCores:  2,
			ThreadsPerCore: 2,
			CPUs:           []int{0, 1, 2, 3},
			CoreOf:         map[int]int{0: 0, 1: 0, 2: 1, 3: 1},
		}
		assert.Equal(t, []int{0, 2, 1, 3}, Assign(4, topo))
	})

	t.Run("只使用允许的逻辑核", func(t *testing.T) {
		topo := Topology{PhysicalCores: 8, ThreadsPerCore: 1, CPUs: []int{4, 5, 6, 7}}
		assert.Equal(t, []int{4, 5, 6, 7, 4, 5}, Assign(6, topo))
	})

	t.Run("数量为 0", func(t *testing.T) {
		assert.Empty(t, Assign(0, Topology{CPUs: []int{0, 1}}))
	})

	t.Run("缺少核编号时使用 0..N-1", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2, 0}, Assign(4, Topology{LogicalCores: 3, ThreadsPerCore: 1}))
	})
}

func TestPinIsBestEffort(t *testing.T) {
	errCh := make(chan error, 1)
	go func() {
		// 不解锁：goroutine 退出时被绑定的线程随之销毁
		runtime.LockOSThread()
		errCh <- Default().Pin(0)
	}()
	if err := <-errCh; err != nil {
		// 容器或非 linux 平台可能拒绝绑核
		assert.True(t, errors.Is(err, ErrUnsupported) || runtime.GOOS == "linux", err.Error())
	}
	assert.NoError(t, NopPinner.Pin(3))
}

func TestAllowedCPUs(t *testing.T) {
	cpus, err := AllowedCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)
	for i := 1; i < len(cpus); i++ {
		assert.Less(t, cpus[i-1], cpus[i], "升序且不重复")
	}
}
