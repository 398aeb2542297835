package vu

// The multiply family maps each vs*vt lane product onto the 48-bit
// accumulator and extracts vd with an op-specific clamp. Every variant
// is the composition of an accumulator update and an extraction rule.

// acc48 assembles the signed 48-bit accumulator value of one lane.
func acc48(lo, md, hi uint16) int64 {
	v := int64(hi)<<32 | int64(md)<<16 | int64(lo)
	return v << 16 >> 16
}

// wrap48 truncates to 48 bits and sign-extends.
func wrap48(v int64) int64 {
	return v << 16 >> 16
}

// clampAccSigned clamps the upper 32 bits (hi:md) of the accumulator
// to signed 16-bit range.
func clampAccSigned(acc int64) uint16 {
	x := acc >> 16
	if x < -0x8000 {
		return 0x8000
	}
	if x > 0x7FFF {
		return 0x7FFF
	}
	return uint16(x)
}

// clampAccUnsigned extracts hi:md unsigned: negative accumulators
// collapse to zero and values above 0x7FFF saturate to 0xFFFF.
func clampAccUnsigned(acc int64) uint16 {
	x := acc >> 16
	if x < 0 {
		return 0
	}
	if x > 0x7FFF {
		return 0xFFFF
	}
	return uint16(x)
}

// clampAccLow extracts the low accumulator slice: the slice itself if
// hi is the sign-extension of md, else the saturated rail picked by
// the accumulator sign.
func clampAccLow(acc int64) uint16 {
	x := acc >> 16
	if x >= -0x8000 && x <= 0x7FFF {
		return uint16(acc)
	}
	if x < 0 {
		return 0
	}
	return 0xFFFF
}

func sgn16(v uint16) int64 { return int64(int16(v)) }
func uns16(v uint16) int64 { return int64(v) }

// Accumulator updates. The "mul" forms replace, the "mac/mad" forms
// add into the running value.
func updMULF(s, t uint16, _ int64) int64   { return sgn16(s)*sgn16(t)*2 + 0x8000 }
func updMACF(s, t uint16, acc int64) int64 { return acc + sgn16(s)*sgn16(t)*2 }
func updMUDL(s, t uint16, _ int64) int64   { return int64(uint32(s) * uint32(t) >> 16) }
func updMADL(s, t uint16, acc int64) int64 { return acc + int64(uint32(s)*uint32(t)>>16) }
func updMUDM(s, t uint16, _ int64) int64   { return sgn16(s) * uns16(t) }
func updMADM(s, t uint16, acc int64) int64 { return acc + sgn16(s)*uns16(t) }
func updMUDN(s, t uint16, _ int64) int64   { return uns16(s) * sgn16(t) }
func updMADN(s, t uint16, acc int64) int64 { return acc + uns16(s)*sgn16(t) }
func updMUDH(s, t uint16, _ int64) int64   { return sgn16(s) * sgn16(t) << 16 }
func updMADH(s, t uint16, acc int64) int64 { return acc + sgn16(s)*sgn16(t)<<16 }

// vmul runs one multiply-family op: per lane, update the accumulator,
// store its three slices back and extract vd.
func (o vop) vmul(update func(s, t uint16, acc int64) int64, extract func(int64) uint16) {
	vs, vt := o.vs(), o.vte()
	lo, md, hi := o.accum(accLo), o.accum(accMd), o.accum(accHi)
	var res [8]uint16
	for i := 0; i < 8; i++ {
		acc := wrap48(update(vs[i], vt[i], acc48(lo[i], md[i], hi[i])))
		lo[i], md[i], hi[i] = uint16(acc), uint16(acc>>16), uint16(acc>>32)
		res[i] = extract(acc)
	}
	o.setaccum(accLo, lo)
	o.setaccum(accMd, md)
	o.setaccum(accHi, hi)
	o.setvd(res)
}
