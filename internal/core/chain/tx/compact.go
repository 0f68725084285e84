package tx

import "errors"

var errCompactU16 = errors.New("invalid compact-u16")

// appendCompactU16 Solana short_vec 长度编码：每字节低 7 位有效，最高位为续位
func appendCompactU16(buf []byte, n int) []byte {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// readCompactU16 解码 short_vec 长度，返回值与占用字节数
func readCompactU16(buf []byte) (int, int, error) {
	var v, shift int
	for i := 0; i < 3; i++ {
		if i >= len(buf) {
			return 0, 0, errCompactU16
		}
		b := buf[i]
		v |= int(b&0x7f) << shift
		if b&0x80 == 0 {
			if v > 0xffff {
				return 0, 0, errCompactU16
			}
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, errCompactU16
}
