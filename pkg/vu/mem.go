package vu

import "fmt"

// Vector load/store sub-opcodes (bits 15..11 of an LWC2/SWC2 opcode).
const (
	opBV = 0x00
	opSV = 0x01
	opLV = 0x02
	opDV = 0x03
	opQV = 0x04
	opRV = 0x05
	opPV = 0x06
	opUV = 0x07
	opHV = 0x08
	opFV = 0x09
	opWV = 0x0A // store only
	opTV = 0x0B
)

// DmemSize is the scratchpad size; accesses wrap at this boundary.
const DmemSize = 0x1000

// DmemLen is the required length of the DMEM slice handed to LWC/SWC:
// the scratchpad plus 16 mirror bytes so that reads straddling the
// wrap boundary can be taken in one contiguous slice.
const DmemLen = DmemSize + 16

// syncMirror refreshes the mirror scratch after DMEM so that straddling
// reads observe the wrap-around contents.
func syncMirror(dmem []byte) {
	copy(dmem[DmemSize:DmemSize+16], dmem[0:16])
}

func beU128(b []byte) U128 {
	var u U128
	for i := 0; i < 8; i++ {
		u.Hi = u.Hi<<8 | uint64(b[i])
		u.Lo = u.Lo<<8 | uint64(b[i+8])
	}
	return u
}

// u128Byte returns byte i of the big-endian view (0 = most significant).
func u128Byte(u U128, i int) byte {
	if i < 8 {
		return byte(u.Hi >> (56 - 8*i))
	}
	return byte(u.Lo >> (56 - 8*(i-8)))
}

// depositRight replaces bits of the register at offsets [skip,
// skip+nbits) from the top with the same window of src shifted right
// by skip. Bits pushed past the end of the register are dropped.
func depositRight(v *VectorReg, src U128, skip, nbits uint) {
	mask := ones128(nbits).Shr(skip)
	cur := v.U128()
	v.SetU128(cur.And(mask.Not()).Or(src.Shr(skip).And(mask)))
}

// depositLeft replaces the top 128-skip bits with src shifted left by
// skip; the store counterpart of depositRight.
func depositLeft(v *VectorReg, src U128, skip uint) {
	mask := ones128(128 - skip)
	cur := v.U128()
	v.SetU128(cur.And(mask.Not()).Or(src.Shl(skip).And(mask)))
}

func loadStoreEA(base uint32, offset int32, sizeLog uint) uint32 {
	return uint32(int32(base)+offset<<sizeLog) & (DmemSize - 1)
}

// LWC executes a vector load. dmem must be DmemLen bytes: the 4 KiB
// scratchpad plus the 16-byte mirror, which this call refreshes before
// reading.
func (c *Cop2) LWC(opcode uint32, cpu *CPU, dmem []byte, t Tracer) error {
	base, vt, op, element, offset := oploadstore(opcode, cpu)
	syncMirror(dmem)
	reg := &c.vregs[vt]
	switch op {
	case opBV, opSV, opLV, opDV:
		sizeLog := uint(op)
		ea := int(loadStoreEA(base, offset, sizeLog))
		for i := 0; i < 1<<sizeLog; i++ {
			reg.SetByte((element+i)&0xF, dmem[ea+i])
		}
	case opQV:
		ea := loadStoreEA(base, offset, 4)
		qw := ea &^ 0xF
		mem := beU128(dmem[qw : qw+16]).Shl(uint(ea&0xF) * 8)
		depositRight(reg, mem, uint(element)*8, 128)
	case opRV:
		ea := loadStoreEA(base, offset, 4)
		qw := ea &^ 0xF
		mem := beU128(dmem[qw : qw+16])
		sh := 16 - int(ea&0xF) + element
		depositRight(reg, mem, uint(sh)*8, 128)
	case opPV, opUV:
		ea := loadStoreEA(base, offset, 3)
		aligned := int(ea &^ 7)
		idx := int(ea&7) - element
		sh := uint(8)
		if op == opUV {
			sh = 7
		}
		for i := 0; i < 8; i++ {
			reg.SetLane(i, uint16(dmem[aligned+((idx+i)&0xF)])<<sh)
		}
	case opHV:
		ea := loadStoreEA(base, offset, 4)
		aligned := int(ea &^ 7)
		idx := int(ea&7) - element
		for i := 0; i < 8; i++ {
			reg.SetLane(i, uint16(dmem[aligned+((idx+i*2)&0xF)])<<7)
		}
	case opFV:
		ea := loadStoreEA(base, offset, 4)
		aligned := int(ea &^ 7)
		idx := int(ea&7) - element
		var tmp VectorReg
		for n := 0; n < 4; n++ {
			tmp.SetLane(n, uint16(dmem[aligned+((idx+n*4)&0xF)])<<7)
			tmp.SetLane(n+4, uint16(dmem[aligned+((idx+n*4+8)&0xF)])<<7)
		}
		end := element + 8
		if end > 16 {
			end = 16
		}
		for i := element; i < end; i++ {
			reg.SetByte(i, tmp.Byte(i))
		}
	case opTV:
		ea := loadStoreEA(base, offset, 4)
		qw := ea &^ 7
		mem := beU128(dmem[qw : qw+16])
		mem = mem.Rotl(uint(element+int(ea&8)) * 8)
		vtbase := vt &^ 7
		vtoff := element >> 1
		for lane := 0; lane < 8; lane++ {
			c.vregs[vtbase+vtoff].SetLane(lane, uint16(mem.Hi>>48))
			mem = mem.Shl(16)
			vtoff = (vtoff + 1) & 7
		}
	default:
		return t.Panic(fmt.Sprintf("unimplemented VU load opcode=0x%02X", op))
	}
	return nil
}

// SWC executes a vector store. Writes that run past the scratchpad
// wrap back to address zero.
func (c *Cop2) SWC(opcode uint32, cpu *CPU, dmem []byte, t Tracer) error {
	base, vt, op, element, offset := oploadstore(opcode, cpu)
	reg := &c.vregs[vt]
	switch op {
	case opBV, opSV, opLV, opDV:
		sizeLog := uint(op)
		ea := int(loadStoreEA(base, offset, sizeLog))
		rot := reg.U128().Rotl(uint(element) * 8)
		for i := 0; i < 1<<sizeLog; i++ {
			dmem[(ea+i)&(DmemSize-1)] = u128Byte(rot, i)
		}
	case opQV:
		ea := loadStoreEA(base, offset, 4)
		qw := ea &^ 0xF
		rot := reg.U128().Rotl(uint(element) * 8)
		var window VectorReg
		window.SetU128(beU128(dmem[qw : qw+16]))
		depositRight(&window, rot, uint(ea&0xF)*8, 128)
		storeWindow(dmem, int(qw), window.U128())
	case opRV:
		ea := loadStoreEA(base, offset, 4)
		qw := ea &^ 0xF
		rot := reg.U128().Rotl(uint(element) * 8)
		var window VectorReg
		window.SetU128(beU128(dmem[qw : qw+16]))
		depositLeft(&window, rot, uint(16-int(ea&0xF))*8)
		storeWindow(dmem, int(qw), window.U128())
	case opPV, opUV:
		ea := int(loadStoreEA(base, offset, 3))
		lanes := reg.Lanes()
		for i := 0; i < 8; i++ {
			el := (element + i) & 0xF
			// Fraction formats differ between the two halves of the
			// element space: 15-bit for one, 16-bit for the other.
			sh := uint(8)
			if op == opUV {
				sh = 7
			}
			if el >= 8 {
				sh = 15 - sh
			}
			dmem[(ea+i)&(DmemSize-1)] = byte(lanes[el&7] >> sh)
		}
	case opHV:
		ea := loadStoreEA(base, offset, 4)
		aligned := int(ea &^ 7)
		idx := int(ea & 7)
		for i := 0; i < 8; i++ {
			b := reg.Byte((element+i*2)&0xF)<<1 | reg.Byte((element+i*2+1)&0xF)>>7
			dmem[(aligned+((idx+i*2)&0xF))&(DmemSize-1)] = b
		}
	case opFV:
		ea := loadStoreEA(base, offset, 4)
		aligned := int(ea &^ 7)
		idx := int(ea & 7)
		lanes := reg.Lanes()
		perm, ok := sfvLanes[element]
		for i := 0; i < 4; i++ {
			var b byte
			if ok {
				b = byte(lanes[perm[i]] >> 7)
			}
			dmem[(aligned+((idx+i*4)&0xF))&(DmemSize-1)] = b
		}
	case opWV:
		ea := loadStoreEA(base, offset, 4)
		qw := int(ea &^ 7)
		mem := reg.U128().Rotr(uint(ea&7) * 8).Rotl(uint(element) * 8)
		storeWindow(dmem, qw, mem)
	case opTV:
		ea := loadStoreEA(base, offset, 4)
		qw := int(ea &^ 7)
		vtbase := vt &^ 7
		vtoff := element >> 1
		var mem U128
		for lane := 0; lane < 8; lane++ {
			mem = mem.Shl(16)
			mem.Lo |= uint64(c.vregs[vtbase+vtoff].Lane(lane))
			vtoff = (vtoff + 1) & 7
		}
		mem = mem.Rotr(uint(ea&7) * 8)
		storeWindow(dmem, qw, mem)
	default:
		return t.Panic(fmt.Sprintf("unimplemented VU store opcode=0x%02X", op))
	}
	return nil
}

// storeWindow writes 16 big-endian bytes starting at addr, wrapping at
// the scratchpad boundary.
func storeWindow(dmem []byte, addr int, mem U128) {
	for i := 0; i < 16; i++ {
		dmem[(addr+i)&(DmemSize-1)] = u128Byte(mem, i)
	}
}

// sfvLanes is the lane permutation each SFV element selects. The
// silicon has no table; this is the empirically derived pattern, and
// every element outside it stores zeros.
var sfvLanes = map[int][4]int{
	0:  {0, 1, 2, 3},
	4:  {1, 2, 3, 0},
	8:  {4, 5, 6, 7},
	11: {3, 0, 1, 2},
	12: {5, 6, 7, 4},
	15: {0, 1, 2, 3},
}
