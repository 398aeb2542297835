package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/n64emu/rspvu/pkg/inst"
	"github.com/n64emu/rspvu/pkg/vu"
)

// StepRecord is one executed instruction with the observable state
// after it, written as a JSON line.
type StepRecord struct {
	PC     uint32 `json:"pc"`
	Op     uint32 `json:"op"`
	Disasm string `json:"disasm"`
	VCO    uint16 `json:"vco"`
	VCC    uint16 `json:"vcc"`
	VCE    uint16 `json:"vce"`
	AccHi  string `json:"acc_hi"`
	AccMd  string `json:"acc_md"`
	AccLo  string `json:"acc_lo"`
}

// StepWriter streams StepRecords as JSONL.
type StepWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func NewStepWriter(w io.Writer) *StepWriter {
	bw := bufio.NewWriter(w)
	return &StepWriter{w: bw, enc: json.NewEncoder(bw)}
}

// Step records the state of c after executing op at pc.
func (sw *StepWriter) Step(c *vu.Cop2, pc, op uint32) error {
	rec := StepRecord{
		PC:     pc,
		Op:     op,
		Disasm: inst.Decode(op, pc).String(),
		VCO:    c.VCO(),
		VCC:    c.VCC(),
		VCE:    c.VCE(),
		AccHi:  fmtU128(c.Reg(vu.RegAccumHi)),
		AccMd:  fmtU128(c.Reg(vu.RegAccumMd)),
		AccLo:  fmtU128(c.Reg(vu.RegAccumLo)),
	}
	return sw.enc.Encode(rec)
}

func (sw *StepWriter) Flush() error { return sw.w.Flush() }

func fmtU128(u vu.U128) string {
	return fmt.Sprintf("%016x%016x", u.Hi, u.Lo)
}
