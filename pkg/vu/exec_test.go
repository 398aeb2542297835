package vu

import (
	"fmt"
	"strings"
	"testing"
)

// testTracer fails the dispatch with a plain error; tests that expect
// tracer hits inspect the message.
type testTracer struct{}

func (testTracer) Panic(msg string) error     { return fmt.Errorf("panic: %s", msg) }
func (testTracer) BreakHere(msg string) error { return fmt.Errorf("break: %s", msg) }

func vuALU(funct uint32, vd, vs, vt, e int) uint32 {
	return 0x12<<26 | 1<<25 | uint32(e)<<21 | uint32(vt)<<16 | uint32(vs)<<11 | uint32(vd)<<6 | funct
}

func moveOp(sub uint32, rt, rd, e int) uint32 {
	return 0x12<<26 | sub<<21 | uint32(rt)<<16 | uint32(rd)<<11 | uint32(e)<<7
}

func splat(v uint16) [8]uint16 {
	return [8]uint16{v, v, v, v, v, v, v, v}
}

func setLanes(c *Cop2, reg int, lanes [8]uint16) {
	c.vregs[reg].SetLanes(lanes)
}

func mustOp(t *testing.T, c *Cop2, cpu *CPU, op uint32) {
	t.Helper()
	if err := c.Op(cpu, op, testTracer{}); err != nil {
		t.Fatalf("Op(%08X): %v", op, err)
	}
}

func TestVADDSaturationWithCarry(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, splat(0x8000))
	setLanes(c, 2, splat(0x8000))
	c.SetVCO(0x00FF) // all carry lanes set

	mustOp(t, c, cpu, vuALU(fnVADD, 3, 1, 2, 0))

	for i := 0; i < 8; i++ {
		if got := c.vregs[3].Lane(i); got != 0x8000 {
			t.Errorf("vd lane %d = %04X, want 8000", i, got)
		}
		if got := c.accum[accLo].Lane(i); got != 0x0001 {
			t.Errorf("acc.lo lane %d = %04X, want 0001", i, got)
		}
	}
	if c.VCO() != 0 {
		t.Errorf("VCO = %04X, want 0", c.VCO())
	}
}

func TestVADDBasic(t *testing.T) {
	tests := []struct {
		vs, vt  uint16
		wantVd  uint16
		wantAcc uint16
	}{
		{0x0001, 0x0002, 0x0003, 0x0003},
		{0x7FFF, 0x0001, 0x7FFF, 0x8000}, // saturates, accumulator wraps
		{0x8000, 0xFFFF, 0x8000, 0x7FFF}, // negative saturation
		{0xFFFF, 0x0001, 0x0000, 0x0000},
	}
	for _, tc := range tests {
		c := New()
		cpu := &CPU{}
		setLanes(c, 1, splat(tc.vs))
		setLanes(c, 2, splat(tc.vt))
		mustOp(t, c, cpu, vuALU(fnVADD, 3, 1, 2, 0))
		if got := c.vregs[3].Lane(0); got != tc.wantVd {
			t.Errorf("VADD %04X+%04X: vd=%04X, want %04X", tc.vs, tc.vt, got, tc.wantVd)
		}
		if got := c.accum[accLo].Lane(0); got != tc.wantAcc {
			t.Errorf("VADD %04X+%04X: acc=%04X, want %04X", tc.vs, tc.vt, got, tc.wantAcc)
		}
	}
}

func TestVSUB(t *testing.T) {
	tests := []struct {
		vs, vt  uint16
		carry   bool
		wantVd  uint16
		wantAcc uint16
	}{
		{0x0005, 0x0003, false, 0x0002, 0x0002},
		{0x0005, 0x0003, true, 0x0001, 0x0001},
		{0x8000, 0x0001, false, 0x8000, 0x7FFF}, // saturates down
		{0x7FFF, 0xFFFF, false, 0x7FFF, 0x8000}, // 0x7FFF - (-1) saturates up
	}
	for _, tc := range tests {
		c := New()
		cpu := &CPU{}
		setLanes(c, 1, splat(tc.vs))
		setLanes(c, 2, splat(tc.vt))
		if tc.carry {
			c.SetVCO(0x00FF)
		}
		mustOp(t, c, cpu, vuALU(fnVSUB, 3, 1, 2, 0))
		if got := c.vregs[3].Lane(0); got != tc.wantVd {
			t.Errorf("VSUB %04X-%04X(c=%v): vd=%04X, want %04X", tc.vs, tc.vt, tc.carry, got, tc.wantVd)
		}
		if got := c.accum[accLo].Lane(0); got != tc.wantAcc {
			t.Errorf("VSUB %04X-%04X(c=%v): acc=%04X, want %04X", tc.vs, tc.vt, tc.carry, got, tc.wantAcc)
		}
		if c.VCO() != 0 {
			t.Errorf("VSUB: VCO=%04X, want 0", c.VCO())
		}
	}
}

func TestVADDCThenVSUBCRestores(t *testing.T) {
	vs := [8]uint16{0x0000, 0x0001, 0x7FFF, 0x8000, 0xFFFF, 0x1234, 0xFEDC, 0x8001}
	vt := [8]uint16{0xFFFF, 0x8000, 0x8000, 0x8000, 0xFFFF, 0x4321, 0x0123, 0x7FFF}

	c := New()
	cpu := &CPU{}
	setLanes(c, 1, vs)
	setLanes(c, 2, vt)
	mustOp(t, c, cpu, vuALU(fnVADDC, 3, 1, 2, 0))
	mustOp(t, c, cpu, vuALU(fnVSUBC, 4, 3, 2, 0))

	for i := 0; i < 8; i++ {
		if got := c.vregs[4].Lane(i); got != vs[i] {
			t.Errorf("lane %d: VADDC;VSUBC = %04X, want %04X", i, got, vs[i])
		}
	}
}

func TestVADDCCarry(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, [8]uint16{0xFFFF, 0x8000, 0x0001, 0, 0, 0, 0, 0})
	setLanes(c, 2, [8]uint16{0x0001, 0x8000, 0x0001, 0, 0, 0, 0, 0})
	mustOp(t, c, cpu, vuALU(fnVADDC, 3, 1, 2, 0))

	wantCarry := [8]uint16{0xFFFF, 0xFFFF, 0, 0, 0, 0, 0, 0}
	for i := 0; i < 8; i++ {
		if got := c.vcoCarry.Lane(i); got != wantCarry[i] {
			t.Errorf("carry lane %d = %04X, want %04X", i, got, wantCarry[i])
		}
		if got := c.vcoNe.Lane(i); got != 0 {
			t.Errorf("ne lane %d = %04X, want 0", i, got)
		}
	}
	if c.VCO() != 0x0003 {
		t.Errorf("VCO = %04X, want 0003", c.VCO())
	}
}

func TestVSUBCFlags(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, [8]uint16{0x0001, 0x0001, 0x0002, 0, 0, 0, 0, 0})
	setLanes(c, 2, [8]uint16{0x0002, 0x0001, 0x0001, 0, 0, 0, 0, 0})
	mustOp(t, c, cpu, vuALU(fnVSUBC, 3, 1, 2, 0))

	// Borrow only on lane 0, not-equal on lanes 0 and 2.
	if got := c.vcoCarry.Lane(0); got != 0xFFFF {
		t.Errorf("carry lane 0 = %04X, want FFFF", got)
	}
	if got := c.vcoCarry.Lane(1); got != 0 {
		t.Errorf("carry lane 1 = %04X, want 0", got)
	}
	if got := c.vcoNe.Lane(1); got != 0 {
		t.Errorf("ne lane 1 = %04X, want 0", got)
	}
	if got := c.vcoNe.Lane(2); got != 0xFFFF {
		t.Errorf("ne lane 2 = %04X, want FFFF", got)
	}
}

func TestVEQFlagSemantics(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, [8]uint16{1, 2, 3, 4, 5, 6, 7, 8})
	setLanes(c, 2, [8]uint16{1, 9, 3, 9, 5, 9, 7, 9})
	mustOp(t, c, cpu, vuALU(fnVEQ, 3, 1, 2, 0))

	for i := 0; i < 8; i++ {
		want := flagLane(i%2 == 0)
		if got := c.vccNormal.Lane(i); got != want {
			t.Errorf("vcc normal lane %d = %04X, want %04X", i, got, want)
		}
		if got := c.vccClip.Lane(i); got != 0 {
			t.Errorf("vcc clip lane %d = %04X, want 0", i, got)
		}
	}
	if c.VCC() != 0x0055 {
		t.Errorf("VCC = %04X, want 0055", c.VCC())
	}
}

func TestComparesWithStickyState(t *testing.T) {
	// On equal operands VLT selects only when carry and ne are both
	// set; VGE is its complement.
	run := func(funct uint32, vco uint16) uint16 {
		c := New()
		cpu := &CPU{}
		setLanes(c, 1, splat(0x0042))
		setLanes(c, 2, splat(0x0042))
		c.SetVCO(vco)
		mustOp(t, c, cpu, vuALU(funct, 3, 1, 2, 0))
		return c.vccNormal.Lane(0)
	}

	if got := run(fnVLT, 0x0101); got != 0xFFFF { // carry+ne on lane 0
		t.Errorf("VLT equal with carry+ne: %04X, want FFFF", got)
	}
	if got := run(fnVLT, 0x0001); got != 0 { // carry only
		t.Errorf("VLT equal with carry only: %04X, want 0", got)
	}
	if got := run(fnVGE, 0x0101); got != 0 {
		t.Errorf("VGE equal with carry+ne: %04X, want 0", got)
	}
	if got := run(fnVGE, 0x0000); got != 0xFFFF {
		t.Errorf("VGE equal clean: %04X, want FFFF", got)
	}
	if got := run(fnVNE, 0x0101); got != 0xFFFF {
		t.Errorf("VNE equal with ne: %04X, want FFFF", got)
	}
	if got := run(fnVNE, 0x0000); got != 0 {
		t.Errorf("VNE equal clean: %04X, want 0", got)
	}
}

func TestVMRG(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, splat(0xAAAA))
	setLanes(c, 2, splat(0x5555))
	c.SetVCC(0x00F0) // normal mask set on lanes 4..7

	mustOp(t, c, cpu, vuALU(fnVMRG, 3, 1, 2, 0))

	for i := 0; i < 8; i++ {
		want := uint16(0x5555)
		if c.vccNormal.Lane(i) != 0 {
			want = 0xAAAA
		}
		if got := c.vregs[3].Lane(i); got != want {
			t.Errorf("VMRG lane %d = %04X, want %04X", i, got, want)
		}
	}
	if c.VCO() != 0 {
		t.Errorf("VMRG left VCO = %04X", c.VCO())
	}
}

func TestLogicOps(t *testing.T) {
	tests := []struct {
		funct uint32
		want  uint16
	}{
		{fnVAND, 0x8888},
		{fnVNAND, 0x7777},
		{fnVOR, 0xEEEE},
		{fnVNOR, 0x1111},
		{fnVXOR, 0x6666},
		{fnVNXOR, 0x9999},
	}
	for _, tc := range tests {
		c := New()
		cpu := &CPU{}
		setLanes(c, 1, splat(0xCCCC))
		setLanes(c, 2, splat(0xAAAA))
		mustOp(t, c, cpu, vuALU(tc.funct, 3, 1, 2, 0))
		if got := c.vregs[3].Lane(0); got != tc.want {
			t.Errorf("funct %02X: vd=%04X, want %04X", tc.funct, got, tc.want)
		}
		if got := c.accum[accLo].Lane(0); got != tc.want {
			t.Errorf("funct %02X: acc=%04X, want %04X", tc.funct, got, tc.want)
		}
	}
}

func TestVABS(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, [8]uint16{0x0001, 0x0000, 0xFFFF, 0x8000, 0x7FFF, 0xFFFF, 0x0000, 0x0001})
	setLanes(c, 2, [8]uint16{0x1234, 0x1234, 0x1234, 0x1234, 0x8000, 0x8000, 0x8000, 0x8000})
	mustOp(t, c, cpu, vuALU(fnVABS, 3, 1, 2, 0))

	want := [8]uint16{0x1234, 0x0000, 0xEDCC, 0xEDCC, 0x8000, 0x8000, 0x0000, 0x8000}
	for i := 0; i < 8; i++ {
		if got := c.vregs[3].Lane(i); got != want[i] {
			t.Errorf("VABS lane %d = %04X, want %04X", i, got, want[i])
		}
	}
}

func TestVSUBBMutatesOnlyAccumulator(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 1, splat(0x0102))
	setLanes(c, 2, splat(0x0304))
	setLanes(c, 3, splat(0xDEAD))
	mustOp(t, c, cpu, vuALU(fnVSUBB, 3, 1, 2, 0))

	if got := c.vregs[3].Lane(0); got != 0 {
		t.Errorf("VSUBB vd = %04X, want 0", got)
	}
	if got := c.accum[accLo].Lane(0); got != 0x0406 {
		t.Errorf("VSUBB acc = %04X, want 0406", got)
	}
}

func TestVSAR(t *testing.T) {
	c := New()
	cpu := &CPU{}
	c.SetReg(RegAccumHi, U128{Hi: 0x1111111111111111, Lo: 0x1111111111111111})
	c.SetReg(RegAccumMd, U128{Hi: 0x2222222222222222, Lo: 0x2222222222222222})
	c.SetReg(RegAccumLo, U128{Hi: 0x3333333333333333, Lo: 0x3333333333333333})

	cases := []struct {
		e    int
		want uint16
	}{
		{8, 0x1111}, {9, 0x2222}, {10, 0x3333},
		{0, 0}, {1, 0}, {2, 0},
	}
	for _, tc := range cases {
		mustOp(t, c, cpu, vuALU(fnVSAR, 3, 1, 2, tc.e))
		if got := c.vregs[3].Lane(0); got != tc.want {
			t.Errorf("VSAR e=%d: vd=%04X, want %04X", tc.e, got, tc.want)
		}
	}

	// Reading must not disturb the accumulator.
	if got := c.accum[accMd].Lane(7); got != 0x2222 {
		t.Errorf("VSAR clobbered accumulator: %04X", got)
	}

	if err := c.Op(cpu, vuALU(fnVSAR, 3, 1, 2, 5), testTracer{}); err == nil {
		t.Error("VSAR with e=5 should be fatal")
	}
}

func TestElementBroadcast(t *testing.T) {
	lanes := [8]uint16{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}
	tests := []struct {
		e    int
		want [8]uint16
	}{
		{0, lanes},
		{1, lanes},
		{2, [8]uint16{0x10, 0x10, 0x12, 0x12, 0x14, 0x14, 0x16, 0x16}},
		{3, [8]uint16{0x11, 0x11, 0x13, 0x13, 0x15, 0x15, 0x17, 0x17}},
		{4, [8]uint16{0x10, 0x10, 0x10, 0x10, 0x14, 0x14, 0x14, 0x14}},
		{5, [8]uint16{0x11, 0x11, 0x11, 0x11, 0x15, 0x15, 0x15, 0x15}},
		{6, [8]uint16{0x12, 0x12, 0x12, 0x12, 0x16, 0x16, 0x16, 0x16}},
		{7, [8]uint16{0x13, 0x13, 0x13, 0x13, 0x17, 0x17, 0x17, 0x17}},
		{8, splat(0x10)},
		{12, splat(0x14)},
		{15, splat(0x17)},
	}
	for _, tc := range tests {
		c := New()
		cpu := &CPU{}
		setLanes(c, 2, lanes)
		// VOR with a zero vs exposes vte directly.
		mustOp(t, c, cpu, vuALU(fnVOR, 3, 1, 2, tc.e))
		got := c.vregs[3].Lanes()
		if got != tc.want {
			t.Errorf("e=%d: got %04X, want %04X", tc.e, got, tc.want)
		}
	}
}

func TestMFC2(t *testing.T) {
	c := New()
	cpu := &CPU{}
	for i := 0; i < 16; i++ {
		c.vregs[5].SetByte(i, byte(0x10+i))
	}

	// Element 2 reads bytes 2 and 3, big-endian, sign-extended.
	mustOp(t, c, cpu, moveOp(0x0, 7, 5, 2))
	if got := cpu.Regs[7]; got != 0x1213 {
		t.Errorf("MFC2 e=2: got %016X, want 1213", got)
	}

	// Element 15 wraps to byte 0.
	mustOp(t, c, cpu, moveOp(0x0, 7, 5, 15))
	if got := cpu.Regs[7]; got != 0x1F10 {
		t.Errorf("MFC2 e=15: got %016X, want 1F10", got)
	}

	// Sign extension.
	c.vregs[5].SetByte(0, 0x80)
	mustOp(t, c, cpu, moveOp(0x0, 7, 5, 0))
	if got := cpu.Regs[7]; got != 0xFFFFFFFFFFFF8011 {
		t.Errorf("MFC2 sign extend: got %016X", got)
	}
}

func TestMTC2(t *testing.T) {
	c := New()
	cpu := &CPU{}
	cpu.Regs[7] = 0xAABB

	mustOp(t, c, cpu, moveOp(0x4, 7, 5, 4))
	if c.vregs[5].Byte(4) != 0xAA || c.vregs[5].Byte(5) != 0xBB {
		t.Errorf("MTC2 e=4: bytes %02X %02X", c.vregs[5].Byte(4), c.vregs[5].Byte(5))
	}

	// At byte 15 the second byte is dropped.
	mustOp(t, c, cpu, moveOp(0x4, 7, 5, 15))
	if c.vregs[5].Byte(15) != 0xAA {
		t.Errorf("MTC2 e=15: byte 15 = %02X", c.vregs[5].Byte(15))
	}
	if c.vregs[5].Byte(0) == 0xBB {
		t.Error("MTC2 e=15 must not wrap into byte 0")
	}
}

func TestCFC2CTC2(t *testing.T) {
	c := New()
	cpu := &CPU{}

	cpu.Regs[7] = 0x8421
	mustOp(t, c, cpu, moveOp(0x6, 7, 0, 0)) // CTC2 vco
	mustOp(t, c, cpu, moveOp(0x2, 8, 0, 0)) // CFC2 vco
	if got := cpu.Regs[8]; got != 0xFFFFFFFFFFFF8421 {
		t.Errorf("CFC2 VCO: got %016X, want sign-extended 8421", got)
	}

	cpu.Regs[7] = 0x00AA
	mustOp(t, c, cpu, moveOp(0x6, 7, 1, 0)) // CTC2 vcc
	mustOp(t, c, cpu, moveOp(0x2, 8, 1, 0))
	if got := cpu.Regs[8]; got != 0x00AA {
		t.Errorf("CFC2 VCC: got %016X, want 00AA", got)
	}

	cpu.Regs[7] = 0xFFFF
	mustOp(t, c, cpu, moveOp(0x6, 7, 2, 0)) // CTC2 vce: only 8 bits stick
	mustOp(t, c, cpu, moveOp(0x2, 8, 2, 0))
	if got := cpu.Regs[8]; got != 0x00FF {
		t.Errorf("CFC2 VCE: got %016X, want 00FF", got)
	}

	if err := c.Op(cpu, moveOp(0x2, 8, 0, 0)|3<<11, testTracer{}); err == nil {
		t.Error("CFC2 with control reg 3 should break")
	}
}

func TestUnknownFunctIsFatal(t *testing.T) {
	c := New()
	cpu := &CPU{}
	err := c.Op(cpu, vuALU(0x12, 3, 1, 2, 0), testTracer{})
	if err == nil || !strings.Contains(err.Error(), "0x12") {
		t.Errorf("unknown funct: err=%v", err)
	}

	err = c.Op(cpu, moveOp(0x1, 7, 5, 0), testTracer{})
	if err == nil || !strings.Contains(err.Error(), "break") {
		t.Errorf("unknown move sub-opcode: err=%v", err)
	}
}

func TestVNOPAndVNULL(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 3, splat(0xBEEF))
	mustOp(t, c, cpu, vuALU(fnVNOP, 3, 1, 2, 0))
	mustOp(t, c, cpu, vuALU(fnVNULL, 3, 1, 2, 0))
	if got := c.vregs[3].Lane(0); got != 0xBEEF {
		t.Errorf("VNOP/VNULL disturbed vd: %04X", got)
	}
}

func TestVMOV(t *testing.T) {
	c := New()
	cpu := &CPU{}
	setLanes(c, 2, [8]uint16{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17})
	setLanes(c, 3, splat(0xAAAA))

	// e=8+lane selects that source lane; destination lane is the low
	// bits of the vs field.
	mustOp(t, c, cpu, vuALU(fnVMOV, 3, 5, 2, 8+4))
	for i := 0; i < 8; i++ {
		want := uint16(0xAAAA)
		if i == 5 {
			want = 0x14
		}
		if got := c.vregs[3].Lane(i); got != want {
			t.Errorf("VMOV lane %d = %04X, want %04X", i, got, want)
		}
	}
	// Accumulator mirrors vt.
	if got := c.accum[accLo].Lane(2); got != 0x12 {
		t.Errorf("VMOV acc.lo lane 2 = %04X, want 0012", got)
	}
}
