package harness

import (
	"fmt"
	"math/rand"

	"github.com/n64emu/rspvu/pkg/vu"
)

// Vector is one golden test vector: a seeded random program, and the
// fingerprint of the machine state after running it. A conforming
// implementation must reproduce the fingerprint bit for bit.
type Vector struct {
	Seed        int64    `json:"seed"`
	Ops         []string `json:"ops"` // hex-encoded opcodes, in order
	Fingerprint string   `json:"fingerprint"`
}

// VU function codes that random programs may draw from: every code the
// dispatcher implements, the reciprocal family included. VSAR is given
// only legal element selectors below.
var randomFuncts = []uint32{
	0x00, 0x01, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0C, 0x0D, 0x0E, 0x0F,
	0x10, 0x11, 0x13, 0x14, 0x15, 0x17, 0x19, 0x1D,
	0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27,
	0x28, 0x29, 0x2A, 0x2B, 0x2C, 0x2D,
	0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x3F,
}

var randomLoads = []uint32{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0B}
var randomStores = []uint32{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B}

// vsarElements are the only legal element selectors for VSAR.
var vsarElements = []int{0, 1, 2, 8, 9, 10}

// randomOp builds one random but always-dispatchable opcode.
// The kind result tells whether it is a load (1), store (2) or ALU
// op (0), so the runner knows which entry point to use.
func randomOp(rng *rand.Rand) (op uint32, kind int) {
	switch rng.Intn(8) {
	case 0: // vector load
		sub := randomLoads[rng.Intn(len(randomLoads))]
		return 0x32<<26 | uint32(rng.Intn(32))<<21 | uint32(rng.Intn(32))<<16 |
			sub<<11 | uint32(rng.Intn(16))<<7 | uint32(rng.Intn(128)), 1
	case 1: // vector store
		sub := randomStores[rng.Intn(len(randomStores))]
		return 0x3A<<26 | uint32(rng.Intn(32))<<21 | uint32(rng.Intn(32))<<16 |
			sub<<11 | uint32(rng.Intn(16))<<7 | uint32(rng.Intn(128)), 2
	default: // VU ALU
		funct := randomFuncts[rng.Intn(len(randomFuncts))]
		e := rng.Intn(16)
		if funct == 0x1D {
			e = vsarElements[rng.Intn(len(vsarElements))]
		}
		return 0x12<<26 | 1<<25 | uint32(e)<<21 | uint32(rng.Intn(32))<<16 |
			uint32(rng.Intn(32))<<11 | uint32(rng.Intn(32))<<6 | funct, 0
	}
}

// Generate runs one seeded random program of opCount instructions and
// returns its vector.
func Generate(seed int64, opCount int) (Vector, error) {
	rng := rand.New(rand.NewSource(seed))

	c := vu.New()
	cpu := &vu.CPU{}
	dmem := make([]byte, vu.DmemLen)
	rng.Read(dmem[:vu.DmemSize])
	for i := 1; i < 32; i++ {
		cpu.Regs[i] = rng.Uint64()
	}
	for i := 0; i < 32; i++ {
		c.SetReg(i, vu.U128{Hi: rng.Uint64(), Lo: rng.Uint64()})
	}

	vec := Vector{Seed: seed}
	var tr nopTracer
	for i := 0; i < opCount; i++ {
		op, kind := randomOp(rng)
		var err error
		switch kind {
		case 1:
			err = c.LWC(op, cpu, dmem, tr)
		case 2:
			err = c.SWC(op, cpu, dmem, tr)
		default:
			err = c.Op(cpu, op, tr)
		}
		if err != nil {
			return vec, fmt.Errorf("seed %d op %d (%08X): %w", seed, i, op, err)
		}
		vec.Ops = append(vec.Ops, fmt.Sprintf("%08X", op))
	}
	fp := Fingerprint(c, dmem)
	vec.Fingerprint = fmt.Sprintf("%x", fp)
	return vec, nil
}

// nopTracer is the harness's own tracer, so pkg/harness does not import
// pkg/trace; random programs are constructed so it never fires.
type nopTracer struct{}

func (nopTracer) Panic(msg string) error     { return fmt.Errorf("vu: %s", msg) }
func (nopTracer) BreakHere(msg string) error { return fmt.Errorf("vu: %s", msg) }
