package vu

import "fmt"

// VU function codes (low 6 bits of a COP2 vector opcode).
const (
	fnVMULF = 0x00
	fnVMULU = 0x01
	fnVMUDL = 0x04
	fnVMUDM = 0x05
	fnVMUDN = 0x06
	fnVMUDH = 0x07
	fnVMACF = 0x08
	fnVMACU = 0x09
	fnVMADL = 0x0C
	fnVMADM = 0x0D
	fnVMADN = 0x0E
	fnVMADH = 0x0F
	fnVADD  = 0x10
	fnVSUB  = 0x11
	fnVABS  = 0x13
	fnVADDC = 0x14
	fnVSUBC = 0x15
	fnVSUBB = 0x17 // undocumented
	fnVSUCB = 0x19 // undocumented
	fnVSAR  = 0x1D
	fnVLT   = 0x20
	fnVEQ   = 0x21
	fnVNE   = 0x22
	fnVGE   = 0x23
	fnVCL   = 0x24
	fnVCH   = 0x25
	fnVCR   = 0x26
	fnVMRG  = 0x27
	fnVAND  = 0x28
	fnVNAND = 0x29
	fnVOR   = 0x2A
	fnVNOR  = 0x2B
	fnVXOR  = 0x2C
	fnVNXOR = 0x2D
	fnVRCP  = 0x30
	fnVRCPL = 0x31
	fnVRCPH = 0x32
	fnVMOV  = 0x33
	fnVRSQ  = 0x34
	fnVRSQL = 0x35
	fnVRSQH = 0x36
	fnVNOP  = 0x37 // undocumented
	fnVNULL = 0x3F // undocumented
)

func sat16(v int32) uint16 {
	if v < -0x8000 {
		return 0x8000
	}
	if v > 0x7FFF {
		return 0x7FFF
	}
	return uint16(v)
}

// Op executes one COP2 opcode. Bit 25 selects between the vector unit
// proper and the scalar move family. The returned error, if any, comes
// straight from the tracer.
func (c *Cop2) Op(cpu *CPU, opcode uint32, t Tracer) error {
	o := vop{op: opcode, c: c}
	if opcode&(1<<25) == 0 {
		return c.moveOp(cpu, o, t)
	}

	switch o.funct() {
	case fnVMULF:
		o.vmul(updMULF, clampAccSigned)
	case fnVMULU:
		o.vmul(updMULF, clampAccUnsigned)
	case fnVMUDL:
		o.vmul(updMUDL, clampAccLow)
	case fnVMUDM:
		o.vmul(updMUDM, clampAccSigned)
	case fnVMUDN:
		o.vmul(updMUDN, clampAccLow)
	case fnVMUDH:
		o.vmul(updMUDH, clampAccSigned)
	case fnVMACF:
		o.vmul(updMACF, clampAccSigned)
	case fnVMACU:
		o.vmul(updMACF, clampAccUnsigned)
	case fnVMADL:
		o.vmul(updMADL, clampAccLow)
	case fnVMADM:
		o.vmul(updMADM, clampAccSigned)
	case fnVMADN:
		o.vmul(updMADN, clampAccLow)
	case fnVMADH:
		o.vmul(updMADH, clampAccSigned)

	case fnVADD:
		vs, vt, carry := o.vs(), o.vte(), o.carry()
		var vd, acc [8]uint16
		for i := 0; i < 8; i++ {
			sum := int32(int16(vs[i])) + int32(int16(vt[i])) + int32(carry[i]&1)
			vd[i] = sat16(sum)
			acc[i] = uint16(sum)
		}
		o.setvd(vd)
		o.setaccum(accLo, acc)
		o.setcarry(zero8)
		o.setne(zero8)
	case fnVSUB:
		vs, vt, carry := o.vs(), o.vte(), o.carry()
		var vd, acc [8]uint16
		for i := 0; i < 8; i++ {
			diff := int32(int16(vs[i])) - int32(int16(vt[i])) - int32(carry[i]&1)
			vd[i] = sat16(diff)
			acc[i] = uint16(diff)
		}
		o.setvd(vd)
		o.setaccum(accLo, acc)
		o.setcarry(zero8)
		o.setne(zero8)
	case fnVABS:
		vs, vt := o.vs(), o.vte()
		var vd [8]uint16
		for i := 0; i < 8; i++ {
			switch s := int16(vs[i]); {
			case s < 0:
				vd[i] = uint16(-int16(vt[i]))
			case s == 0:
				vd[i] = 0
			default:
				vd[i] = vt[i]
			}
		}
		o.setvd(vd)
		o.setaccum(accLo, vd)
	case fnVADDC:
		vs, vt := o.vs(), o.vte()
		var vd, carry [8]uint16
		for i := 0; i < 8; i++ {
			sum := uint32(vs[i]) + uint32(vt[i])
			vd[i] = uint16(sum)
			carry[i] = flagLane(sum > 0xFFFF)
		}
		o.setvd(vd)
		o.setaccum(accLo, vd)
		o.setcarry(carry)
		o.setne(zero8)
	case fnVSUBC:
		vs, vt := o.vs(), o.vte()
		var vd, carry, ne [8]uint16
		for i := 0; i < 8; i++ {
			vd[i] = vs[i] - vt[i]
			carry[i] = flagLane(vs[i] < vt[i])
			ne[i] = flagLane(vs[i] != vt[i])
		}
		o.setvd(vd)
		o.setaccum(accLo, vd)
		o.setcarry(carry)
		o.setne(ne)
	case fnVSUBB, fnVSUCB:
		// No architectural result, but the accumulator is mutated.
		vs, vt := o.vs(), o.vte()
		var acc [8]uint16
		for i := 0; i < 8; i++ {
			acc[i] = vs[i] + vt[i]
		}
		o.setvd(zero8)
		o.setaccum(accLo, acc)
	case fnVSAR:
		// The accumulator is read, never written, despite what the
		// programming manual claims.
		switch e := o.e(); {
		case e <= 2:
			o.setvd(zero8)
		case e >= 8 && e <= 10:
			o.setvd(o.accum(accHi - (e - 8)))
		default:
			return t.Panic(fmt.Sprintf("VSAR with invalid element %d", o.e()))
		}

	case fnVLT, fnVEQ, fnVNE, fnVGE:
		o.compare(o.funct())
	case fnVCL:
		o.vcl()
	case fnVCH:
		o.vch()
	case fnVCR:
		o.vcr()
	case fnVMRG:
		vs, vt := o.vs(), o.vte()
		mask := c.vccNormal.Lanes()
		var vd [8]uint16
		for i := 0; i < 8; i++ {
			if mask[i] != 0 {
				vd[i] = vs[i]
			} else {
				vd[i] = vt[i]
			}
		}
		o.setvd(vd)
		o.setaccum(accLo, vd)
		o.setcarry(zero8)
		o.setne(zero8)

	case fnVAND:
		o.logic(func(s, t uint16) uint16 { return s & t })
	case fnVNAND:
		o.logic(func(s, t uint16) uint16 { return ^(s & t) })
	case fnVOR:
		o.logic(func(s, t uint16) uint16 { return s | t })
	case fnVNOR:
		o.logic(func(s, t uint16) uint16 { return ^(s | t) })
	case fnVXOR:
		o.logic(func(s, t uint16) uint16 { return s ^ t })
	case fnVNXOR:
		o.logic(func(s, t uint16) uint16 { return ^(s ^ t) })

	case fnVRCP:
		c.recip(o, vrcp(sx32(c.vregs[o.rt()].Lane(o.e()&7))))
	case fnVRCPL:
		c.recip(o, vrcp(c.divLow(o)))
	case fnVRCPH:
		c.recipHigh(o)
	case fnVRSQ:
		c.recip(o, vrsq(sx32(c.vregs[o.rt()].Lane(o.e()&7))))
	case fnVRSQL:
		c.recip(o, vrsq(c.divLow(o)))
	case fnVRSQH:
		c.recipHigh(o)

	case fnVMOV:
		e, de := o.e(), o.rs()&7
		var se int
		switch {
		case e <= 1:
			se = o.rs() & 0b111
		case e <= 3:
			se = e&0b001 | o.rs()&0b110
		case e <= 7:
			se = e&0b011 | o.rs()&0b100
		default:
			se = e & 0b111
		}
		val := c.vregs[o.rt()].Lane(se)
		c.vregs[o.rd()].SetLane(de, val)
		o.setaccum(accLo, o.vt())

	case fnVNOP, fnVNULL:
		// Observed hardware behavior: nothing at all.

	default:
		return t.Panic(fmt.Sprintf("unimplemented COP2 VU opcode=0x%02X", o.funct()))
	}
	return nil
}

// compare implements VLT/VEQ/VNE/VGE: a lane predicate folded with the
// sticky carry/ne state, a select, and a VCC update.
func (o vop) compare(funct uint32) {
	vs, vt := o.vs(), o.vte()
	carry, ne := o.carry(), o.ne()
	var vd, cond [8]uint16
	for i := 0; i < 8; i++ {
		s, t := int16(vs[i]), int16(vt[i])
		var cc bool
		switch funct {
		case fnVLT:
			cc = s < t || (s == t && carry[i] != 0 && ne[i] != 0)
		case fnVEQ:
			cc = s == t && ne[i] == 0
		case fnVNE:
			cc = s != t || (s == t && ne[i] != 0)
		case fnVGE:
			cc = s > t || (s == t && !(carry[i] != 0 && ne[i] != 0))
		}
		cond[i] = flagLane(cc)
		if cc {
			vd[i] = vs[i]
		} else {
			vd[i] = vt[i]
		}
	}
	o.setvd(vd)
	o.setaccum(accLo, vd)
	o.c.vccNormal.SetLanes(cond)
	o.c.vccClip.SetLanes(zero8)
	o.setcarry(zero8)
	o.setne(zero8)
}

func (o vop) logic(f func(s, t uint16) uint16) {
	vs, vt := o.vs(), o.vte()
	var vd [8]uint16
	for i := 0; i < 8; i++ {
		vd[i] = f(vs[i], vt[i])
	}
	o.setvd(vd)
	o.setaccum(accLo, vd)
}

// divLow builds the 32-bit operand of VRCPL/VRSQL: the latched high
// half if a VRCPH/VRSQH preceded, otherwise the sign-extended lane.
func (c *Cop2) divLow(o vop) uint32 {
	x := c.vregs[o.rt()].Lane(o.e() & 7)
	if c.divInPending {
		c.divInPending = false
		return c.divIn | uint32(x)
	}
	return sx32(x)
}

// recip finishes a reciprocal-family op: one result lane, accumulator
// mirror of vt, and the div_out latch.
func (c *Cop2) recip(o vop, res uint32) {
	c.vregs[o.rd()].SetLane(o.rs()&7, uint16(res))
	o.setaccum(accLo, o.vt())
	c.divOut = res
}

// recipHigh implements VRCPH/VRSQH: latch the high half of the next
// double-precision operand and expose the high half of the previous
// result.
func (c *Cop2) recipHigh(o vop) {
	x := c.vregs[o.rt()].Lane(o.e() & 7)
	c.vregs[o.rd()].SetLane(o.rs()&7, uint16(c.divOut>>16))
	o.setaccum(accLo, o.vt())
	c.divIn = uint32(x) << 16
	c.divInPending = true
}

// moveOp handles the scalar transfer family (bit 25 clear): MFC2,
// CFC2, MTC2, CTC2, selected by the e field.
func (c *Cop2) moveOp(cpu *CPU, o vop, t Tracer) error {
	// Writes to scalar register 0 are dropped.
	setGPR := func(v uint64) {
		if rt := o.rt(); rt != 0 {
			cpu.Regs[rt] = v
		}
	}
	switch o.e() {
	case 0x0: // MFC2
		el := o.rd() >> 1
		hi := c.vregs[o.rs()].Byte(el)
		lo := c.vregs[o.rs()].Byte((el + 1) & 0xF)
		setGPR(uint64(int64(int16(uint16(hi)<<8 | uint16(lo)))))
	case 0x4: // MTC2
		el := o.rd() >> 1
		v := uint16(cpu.Regs[o.rt()])
		c.vregs[o.rs()].SetByte(el, byte(v>>8))
		if el < 15 {
			c.vregs[o.rs()].SetByte(el+1, byte(v))
		}
	case 0x2: // CFC2
		switch o.rs() {
		case 0:
			setGPR(uint64(int64(int16(c.VCO()))))
		case 1:
			setGPR(uint64(int64(int16(c.VCC()))))
		case 2:
			setGPR(uint64(int64(int16(c.VCE()))))
		default:
			return t.BreakHere(fmt.Sprintf("CFC2 with invalid control reg %d", o.rs()))
		}
	case 0x6: // CTC2
		switch o.rs() {
		case 0:
			c.SetVCO(uint16(cpu.Regs[o.rt()]))
		case 1:
			c.SetVCC(uint16(cpu.Regs[o.rt()]))
		case 2:
			c.SetVCE(uint16(cpu.Regs[o.rt()]))
		default:
			return t.BreakHere(fmt.Sprintf("CTC2 with invalid control reg %d", o.rs()))
		}
	default:
		return t.BreakHere(fmt.Sprintf("unimplemented COP2 move sub-opcode=0x%X", o.e()))
	}
	return nil
}
