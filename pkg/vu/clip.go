package vu

// Clip kernels. VCH opens a clip against +/-vt and records the full
// comparison state; VCL consumes that state to finalize the clip; VCR
// is the ones-complement single-step form. The branch structure below
// is the hardware truth table, split on the sign disagreement of each
// lane pair.

func (o vop) vch() {
	vs, vt := o.vs(), o.vte()
	var vd, carry, ne, le, ge, vce [8]uint16
	for i := 0; i < 8; i++ {
		s, t := int16(vs[i]), int16(vt[i])
		if (s ^ t) < 0 {
			sum := int32(s) + int32(t)
			carry[i] = 0xFFFF
			vce[i] = flagLane(sum == -1)
			le[i] = flagLane(sum <= 0)
			ge[i] = flagLane(t < 0)
			ne[i] = flagLane(sum != 0 && sum != -1)
			if le[i] != 0 {
				vd[i] = uint16(-t)
			} else {
				vd[i] = uint16(s)
			}
		} else {
			le[i] = flagLane(t < 0)
			ge[i] = flagLane(int32(s)-int32(t) >= 0)
			ne[i] = flagLane(s != t)
			if ge[i] != 0 {
				vd[i] = uint16(t)
			} else {
				vd[i] = uint16(s)
			}
		}
	}
	o.setvd(vd)
	o.setaccum(accLo, vd)
	o.setcarry(carry)
	o.setne(ne)
	o.c.vccNormal.SetLanes(le)
	o.c.vccClip.SetLanes(ge)
	o.c.vce.SetLanes(vce)
}

func (o vop) vcr() {
	vs, vt := o.vs(), o.vte()
	var vd, le, ge [8]uint16
	for i := 0; i < 8; i++ {
		s, t := int16(vs[i]), int16(vt[i])
		if (s ^ t) < 0 {
			le[i] = flagLane(int32(s)+int32(t)+1 <= 0)
			ge[i] = flagLane(t < 0)
			if le[i] != 0 {
				vd[i] = uint16(^t)
			} else {
				vd[i] = uint16(s)
			}
		} else {
			le[i] = flagLane(t < 0)
			ge[i] = flagLane(int32(s)-int32(t) >= 0)
			if ge[i] != 0 {
				vd[i] = uint16(t)
			} else {
				vd[i] = uint16(s)
			}
		}
	}
	o.setvd(vd)
	o.setaccum(accLo, vd)
	o.setcarry(zero8)
	o.setne(zero8)
	o.c.vce.SetLanes(zero8)
	o.c.vccNormal.SetLanes(le)
	o.c.vccClip.SetLanes(ge)
}

func (o vop) vcl() {
	vs, vt := o.vs(), o.vte()
	carry, ne := o.carry(), o.ne()
	le, ge := o.c.vccNormal.Lanes(), o.c.vccClip.Lanes()
	vce := o.c.vce.Lanes()
	var vd [8]uint16
	for i := 0; i < 8; i++ {
		s, t := vs[i], vt[i]
		if carry[i] != 0 {
			if ne[i] == 0 {
				sum := uint32(s) + uint32(t)
				lzero := sum&0xFFFF == 0
				nocarry := sum&0x10000 == 0
				if vce[i] != 0 {
					le[i] = flagLane(lzero || nocarry)
				} else {
					le[i] = flagLane(lzero && nocarry)
				}
			}
			if le[i] != 0 {
				vd[i] = uint16(-int16(t))
			} else {
				vd[i] = s
			}
		} else {
			if ne[i] == 0 {
				ge[i] = flagLane(s >= t)
			}
			if ge[i] != 0 {
				vd[i] = t
			} else {
				vd[i] = s
			}
		}
	}
	o.setvd(vd)
	o.setaccum(accLo, vd)
	o.setcarry(zero8)
	o.setne(zero8)
	o.c.vce.SetLanes(zero8)
	o.c.vccNormal.SetLanes(le)
	o.c.vccClip.SetLanes(ge)
}
