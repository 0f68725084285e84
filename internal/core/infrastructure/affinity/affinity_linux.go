//go:build linux

package affinity

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func pinCurrentThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity core %d: %w", core, err)
	}
	return nil
}

// cpuSetSize unix.CPUSet 可表示的逻辑核数
const cpuSetSize = len(unix.CPUSet{}) * strconv.IntSize

// AllowedCPUs 当前进程允许运行的逻辑核编号（受 cgroup/taskset 限制）
func AllowedCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("sched_getaffinity: %w", err)
	}
	cpus := make([]int, 0, set.Count())
	for cpu := 0; cpu < cpuSetSize && len(cpus) < cap(cpus); cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus, nil
}

// coreIDs 从 sysfs 读取物理核标识（封装号与核号组合），读不到的核不写入
func coreIDs(cpus []int) map[int]int {
	ids := make(map[int]int, len(cpus))
	for _, cpu := range cpus {
		dir := fmt.Sprintf("/sys/devices/system/cpu/cpu%d/topology/", cpu)
		core, err := readInt(dir + "core_id")
		if err != nil {
			continue
		}
		pkg, err := readInt(dir + "physical_package_id")
		if err != nil {
			pkg = 0
		}
		ids[cpu] = pkg<<16 | core
	}
	return ids
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}
