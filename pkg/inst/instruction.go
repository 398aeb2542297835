package inst

import "fmt"

// DecodedInsn is one disassembled coprocessor-2 instruction.
type DecodedInsn struct {
	PC       uint32
	Raw      uint32
	Mnemonic string
	Args     string
}

func (d DecodedInsn) String() string {
	if d.Args == "" {
		return fmt.Sprintf("%08X:  %08X  %s", d.PC, d.Raw, d.Mnemonic)
	}
	return fmt.Sprintf("%08X:  %08X  %-8s %s", d.PC, d.Raw, d.Mnemonic, d.Args)
}

// Primary opcode values (bits 31..26) this decoder understands.
const (
	opcCOP2 = 0x12
	opcLWC2 = 0x32
	opcSWC2 = 0x3A
)

// Decode disassembles a COP2/LWC2/SWC2 opcode. Anything else comes
// back as a raw .word directive so a listing never loses data.
func Decode(op uint32, pc uint32) DecodedInsn {
	d := DecodedInsn{PC: pc, Raw: op}
	switch op >> 26 {
	case opcCOP2:
		decodeCop2(&d)
	case opcLWC2:
		decodeMem(&d, loadNames)
	case opcSWC2:
		decodeMem(&d, storeNames)
	default:
		d.Mnemonic = ".word"
		d.Args = fmt.Sprintf("0x%08X", op)
	}
	return d
}

func decodeCop2(d *DecodedInsn) {
	op := d.Raw
	if op&(1<<25) != 0 {
		funct := op & 0x3F
		name := vuFuncNames[funct]
		if name == "" {
			d.Mnemonic = ".word"
			d.Args = fmt.Sprintf("0x%08X", op)
			return
		}
		e := op >> 21 & 0xF
		vt := op >> 16 & 0x1F
		vs := op >> 11 & 0x1F
		vd := op >> 6 & 0x1F
		d.Mnemonic = name
		switch funct {
		case 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36:
			// Single-lane forms: vd[de], vt[e].
			d.Args = fmt.Sprintf("$v%02d[%d], $v%02d[%d]", vd, vs&7, vt, e)
		case 0x37, 0x3F:
			d.Args = ""
		default:
			d.Args = fmt.Sprintf("$v%02d, $v%02d, $v%02d", vd, vs, vt)
			if e != 0 {
				d.Args += fmt.Sprintf("[%d]", e)
			}
		}
		return
	}

	rt := op >> 16 & 0x1F
	rd := op >> 11 & 0x1F
	switch op >> 21 & 0xF {
	case 0x0:
		d.Mnemonic = "mfc2"
		d.Args = fmt.Sprintf("$%d, $v%02d[%d]", rt, rd, op>>7&0xF)
	case 0x4:
		d.Mnemonic = "mtc2"
		d.Args = fmt.Sprintf("$%d, $v%02d[%d]", rt, rd, op>>7&0xF)
	case 0x2:
		d.Mnemonic = "cfc2"
		d.Args = fmt.Sprintf("$%d, $c%d", rt, rd)
	case 0x6:
		d.Mnemonic = "ctc2"
		d.Args = fmt.Sprintf("$%d, $c%d", rt, rd)
	default:
		d.Mnemonic = ".word"
		d.Args = fmt.Sprintf("0x%08X", op)
	}
}

func decodeMem(d *DecodedInsn, names [32]memInfo) {
	op := d.Raw
	info := names[op>>11&0x1F]
	if info.name == "" {
		d.Mnemonic = ".word"
		d.Args = fmt.Sprintf("0x%08X", op)
		return
	}
	base := op >> 21 & 0x1F
	vt := op >> 16 & 0x1F
	element := op >> 7 & 0xF
	offset := int32(op&0x7F) << 25 >> 25 << info.sizeLog
	d.Mnemonic = info.name
	if offset < 0 {
		d.Args = fmt.Sprintf("$v%02d[%d], -0x%03X($%d)", vt, element, -offset, base)
	} else {
		d.Args = fmt.Sprintf("$v%02d[%d], 0x%03X($%d)", vt, element, offset, base)
	}
}
