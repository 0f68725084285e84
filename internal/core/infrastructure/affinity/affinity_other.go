//go:build !linux

package affinity

import "runtime"

func pinCurrentThread(int) error { return ErrUnsupported }

// AllowedCPUs 当前进程允许运行的逻辑核编号
func AllowedCPUs() ([]int, error) { return sequence(runtime.NumCPU()), nil }

func coreIDs([]int) map[int]int { return nil }
