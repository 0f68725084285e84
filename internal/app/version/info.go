// Package version 构建版本信息
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时通过 ldflags 注入：
//
//	-X github.com/weisyn/oreminer/internal/app/version.Version=v0.2.0
//	-X github.com/weisyn/oreminer/internal/app/version.GitCommit=$(git rev-parse --short HEAD)
//	-X github.com/weisyn/oreminer/internal/app/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var (
	Version   = "v0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown" // RFC3339

	GoVersion = runtime.Version()
	GoArch    = runtime.GOARCH
	GoOS      = runtime.GOOS
)

// BuildInfo 完整构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	GoArch    string `json:"go_arch"`
	GoOS      string `json:"go_os"`
}

// GetVersion 获取版本号
func GetVersion() string { return Version }

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		GoArch:    GoArch,
		GoOS:      GoOS,
	}
}

// GetFullVersion 多行版本信息，用于 version 命令
func GetFullVersion() string {
	info := GetBuildInfo()
	s := fmt.Sprintf("ore-miner %s", info.Version)
	if info.GitCommit != "unknown" {
		s += fmt.Sprintf(" (%s)", info.GitCommit)
	}
	if info.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			s += fmt.Sprintf("\n构建时间: %s", t.Format("2006-01-02 15:04:05 MST"))
		} else {
			s += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}
	s += fmt.Sprintf("\nGo版本: %s", info.GoVersion)
	s += fmt.Sprintf("\n平台: %s/%s", info.GoOS, info.GoArch)
	return s
}
