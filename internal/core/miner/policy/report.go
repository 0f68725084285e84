package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weisyn/oreminer/internal/core/infrastructure/affinity"
	"github.com/weisyn/oreminer/pkg/constants"
)

// Multiplier 质押收益倍数：1 + min(balance / topBalance, 1)
//
// topBalance 为 0 时比值视为封顶，返回 2（含 balance 也为 0 的情况）。
func Multiplier(balance, topBalance uint64) float64 {
	if topBalance == 0 {
		return 2
	}
	ratio := float64(balance) / float64(topBalance)
	if ratio > 1 {
		ratio = 1
	}
	return 1 + ratio
}

// AmountToString 以 ORE 精度（11 位小数）格式化最小单位数量
func AmountToString(amount uint64) string {
	const decimals = constants.TokenDecimals
	s := strconv.FormatUint(amount, 10)
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	return s[:len(s)-decimals] + "." + s[len(s)-decimals:]
}

// AmountChange 带符号的变化量（本轮与上轮余额之差）
func AmountChange(prev, cur uint64) string {
	if cur >= prev {
		return AmountToString(cur - prev)
	}
	return "-" + AmountToString(prev-cur)
}

// FormatDuration 秒数格式化为 MM:SS
func FormatDuration(seconds uint64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// CheckNumCores 请求的核心数是否超过本进程可用的逻辑核；超过时返回告警文本
func CheckNumCores(requested int) (string, bool) {
	return checkNumCores(requested, affinity.Detect().Available())
}

func checkNumCores(requested, available int) (string, bool) {
	if requested > available {
		return fmt.Sprintf("Cannot exceed available cores (%d)", available), false
	}
	return "", true
}
