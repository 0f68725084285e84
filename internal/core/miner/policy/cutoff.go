package policy

// RoundWindow 两次哈希提交之间的协议窗口（秒）
const RoundWindow int64 = 60

// Cutoff 本轮搜索的截止时间（秒）
//
//	max(0, lastHashAt + 60 - bufferSeconds - now)
func Cutoff(lastHashAt int64, bufferSeconds uint64, now int64) uint64 {
	buffer := int64(bufferSeconds)
	if bufferSeconds > uint64(1<<63-1) {
		buffer = 1<<63 - 1
	}
	v := satSub(satSub(satAdd(lastHashAt, RoundWindow), buffer), now)
	if v < 0 {
		return 0
	}
	return uint64(v)
}
