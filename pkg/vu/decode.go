package vu

// vop wraps one 32-bit VU opcode together with the context, exposing
// the operand fields and the register accessors the kernels use.
type vop struct {
	op uint32
	c  *Cop2
}

func (o vop) funct() uint32 { return o.op & 0x3F }
func (o vop) e() int        { return int(o.op>>21) & 0xF }
func (o vop) rs() int       { return int(o.op>>11) & 0x1F }
func (o vop) rt() int       { return int(o.op>>16) & 0x1F }
func (o vop) rd() int       { return int(o.op>>6) & 0x1F }

func (o vop) vs() [8]uint16 { return o.c.vregs[o.rs()].Lanes() }
func (o vop) vt() [8]uint16 { return o.c.vregs[o.rt()].Lanes() }

// vte applies the element-broadcast selector to vt. Lane indices here
// are architectural (lane 0 most significant); the patterns are the
// lane-order mirror of the SSE shuffle constants used by SIMD
// implementations.
func (o vop) vte() [8]uint16 {
	vt := o.c.vregs[o.rt()].Lanes()
	e := o.e()
	switch {
	case e <= 1:
		return vt
	case e == 2: // 0q: even lane of each pair
		return [8]uint16{vt[0], vt[0], vt[2], vt[2], vt[4], vt[4], vt[6], vt[6]}
	case e == 3: // 1q: odd lane of each pair
		return [8]uint16{vt[1], vt[1], vt[3], vt[3], vt[5], vt[5], vt[7], vt[7]}
	case e == 4: // 0h
		return [8]uint16{vt[0], vt[0], vt[0], vt[0], vt[4], vt[4], vt[4], vt[4]}
	case e == 5: // 1h
		return [8]uint16{vt[1], vt[1], vt[1], vt[1], vt[5], vt[5], vt[5], vt[5]}
	case e == 6: // 2h
		return [8]uint16{vt[2], vt[2], vt[2], vt[2], vt[6], vt[6], vt[6], vt[6]}
	case e == 7: // 3h
		return [8]uint16{vt[3], vt[3], vt[3], vt[3], vt[7], vt[7], vt[7], vt[7]}
	default: // scalar broadcast of lane e-8
		s := vt[e-8]
		return [8]uint16{s, s, s, s, s, s, s, s}
	}
}

func (o vop) setvd(val [8]uint16)           { o.c.vregs[o.rd()].SetLanes(val) }
func (o vop) accum(idx int) [8]uint16       { return o.c.accum[idx].Lanes() }
func (o vop) setaccum(idx int, v [8]uint16) { o.c.accum[idx].SetLanes(v) }

func (o vop) carry() [8]uint16     { return o.c.vcoCarry.Lanes() }
func (o vop) setcarry(v [8]uint16) { o.c.vcoCarry.SetLanes(v) }
func (o vop) ne() [8]uint16        { return o.c.vcoNe.Lanes() }
func (o vop) setne(v [8]uint16)    { o.c.vcoNe.SetLanes(v) }

// oploadstore extracts the operand fields of an LWC2/SWC2 opcode: the
// base register value, target vector register, sub-opcode, element and
// the sign-extended 7-bit offset.
func oploadstore(op uint32, cpu *CPU) (base uint32, vt int, opcode uint32, element int, offset int32) {
	base = uint32(cpu.Regs[op>>21&0x1F])
	vt = int(op>>16) & 0x1F
	opcode = op >> 11 & 0x1F
	element = int(op>>7) & 0xF
	offset = int32(op&0x7F) << 25 >> 25
	return
}

var zero8 [8]uint16
