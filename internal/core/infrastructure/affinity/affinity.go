// Package affinity 提供 CPU 拓扑探测与线程绑核
//
// 绑核是尽力而为的：不支持的平台或调用失败时，工作线程照常运行。
package affinity

import (
	"errors"
	"runtime"
	"sort"

	"github.com/klauspost/cpuid/v2"
)

// ErrUnsupported 当前平台不支持绑核
var ErrUnsupported = errors.New("thread affinity not supported on this platform")

// Topology CPU 拓扑信息
type Topology struct {
	Brand          string `json:"brand"`
	LogicalCores   int    `json:"logical_cores"`
	PhysicalCores  int    `json:"physical_cores"`
	ThreadsPerCore int    `json:"threads_per_core"`
	L2CacheBytes   int    `json:"l2_cache_bytes"`

	// CPUs 本进程允许运行的逻辑核编号（升序）
	CPUs []int `json:"cpus"`

	// CoreOf 逻辑核编号 -> 物理核标识；缺失的编号按 cpuid 的核数推断
	CoreOf map[int]int `json:"-"`
}

// Detect 探测本机拓扑；cpuid 取不到的字段回落到 runtime.NumCPU
func Detect() Topology {
	t := Topology{
		Brand:          cpuid.CPU.BrandName,
		LogicalCores:   cpuid.CPU.LogicalCores,
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		ThreadsPerCore: cpuid.CPU.ThreadsPerCore,
		L2CacheBytes:   cpuid.CPU.Cache.L2,
	}
	if t.LogicalCores <= 0 {
		t.LogicalCores = runtime.NumCPU()
	}
	if t.PhysicalCores <= 0 {
		t.PhysicalCores = t.LogicalCores
	}
	if t.ThreadsPerCore <= 0 {
		t.ThreadsPerCore = 1
	}
	if cpus, err := AllowedCPUs(); err == nil && len(cpus) > 0 {
		t.CPUs = cpus
	} else {
		t.CPUs = sequence(runtime.NumCPU())
	}
	t.CoreOf = coreIDs(t.CPUs)
	return t
}

// Available 可用于工作线程的逻辑核数
func (t Topology) Available() int {
	if len(t.CPUs) > 0 {
		return len(t.CPUs)
	}
	if t.LogicalCores > 0 {
		return t.LogicalCores
	}
	return runtime.NumCPU()
}

// coreKey 逻辑核所属的物理核
//
// 没有系统拓扑时按常见编号方式推断：超线程兄弟核相差 PhysicalCores。
func (t Topology) coreKey(cpu int) int {
	if id, ok := t.CoreOf[cpu]; ok {
		return id
	}
	if t.ThreadsPerCore > 1 && t.PhysicalCores > 0 {
		return cpu % t.PhysicalCores
	}
	return cpu
}

// Order 绑核顺序：先为每个物理核取一个逻辑核，再依次取各核的兄弟线程
func (t Topology) Order() []int {
	cpus := append([]int(nil), t.CPUs...)
	if len(cpus) == 0 {
		cpus = sequence(t.Available())
	}
	sort.Ints(cpus)

	var keys []int
	siblings := make(map[int][]int)
	for _, cpu := range cpus {
		k := t.coreKey(cpu)
		if _, ok := siblings[k]; !ok {
			keys = append(keys, k)
		}
		siblings[k] = append(siblings[k], cpu)
	}

	order := make([]int, 0, len(cpus))
	for level := 0; len(order) < len(cpus); level++ {
		for _, k := range keys {
			if level < len(siblings[k]) {
				order = append(order, siblings[k][level])
			}
		}
	}
	return order
}

// Pinner 把当前 OS 线程绑定到指定逻辑核
//
// 调用方须先 runtime.LockOSThread()，否则 goroutine 可能被迁移到别的线程。
type Pinner interface {
	Pin(core int) error
}

// PinnerFunc 函数适配器
type PinnerFunc func(core int) error

func (f PinnerFunc) Pin(core int) error { return f(core) }

// NopPinner 不做任何绑定
var NopPinner Pinner = PinnerFunc(func(int) error { return nil })

// Default 返回当前平台的绑核实现
func Default() Pinner { return PinnerFunc(pinCurrentThread) }

// Assign 为 n 个工作线程分配逻辑核编号
//
// 前 P 个线程落在互不相同的物理核上（P 为可用物理核数），超过逻辑核数时循环。
func Assign(n int, topo Topology) []int {
	order := topo.Order()
	cores := make([]int, n)
	for i := range cores {
		cores[i] = order[i%len(order)]
	}
	return cores
}

func sequence(n int) []int {
	if n <= 0 {
		n = 1
	}
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
