package inst

// vuFuncNames maps the 6-bit VU function code to its mnemonic. Gaps
// are opcodes the hardware does not implement.
var vuFuncNames = [64]string{
	0x00: "vmulf",
	0x01: "vmulu",
	0x04: "vmudl",
	0x05: "vmudm",
	0x06: "vmudn",
	0x07: "vmudh",
	0x08: "vmacf",
	0x09: "vmacu",
	0x0C: "vmadl",
	0x0D: "vmadm",
	0x0E: "vmadn",
	0x0F: "vmadh",
	0x10: "vadd",
	0x11: "vsub",
	0x13: "vabs",
	0x14: "vaddc",
	0x15: "vsubc",
	0x17: "vsubb",
	0x19: "vsucb",
	0x1D: "vsar",
	0x20: "vlt",
	0x21: "veq",
	0x22: "vne",
	0x23: "vge",
	0x24: "vcl",
	0x25: "vch",
	0x26: "vcr",
	0x27: "vmrg",
	0x28: "vand",
	0x29: "vnand",
	0x2A: "vor",
	0x2B: "vnor",
	0x2C: "vxor",
	0x2D: "vnxor",
	0x30: "vrcp",
	0x31: "vrcpl",
	0x32: "vrcph",
	0x33: "vmov",
	0x34: "vrsq",
	0x35: "vrsql",
	0x36: "vrsqh",
	0x37: "vnop",
	0x3F: "vnull",
}

type memInfo struct {
	name    string
	sizeLog uint // scale applied to the 7-bit offset
}

var loadNames = [32]memInfo{
	0x00: {"lbv", 0},
	0x01: {"lsv", 1},
	0x02: {"llv", 2},
	0x03: {"ldv", 3},
	0x04: {"lqv", 4},
	0x05: {"lrv", 4},
	0x06: {"lpv", 3},
	0x07: {"luv", 3},
	0x08: {"lhv", 4},
	0x09: {"lfv", 4},
	0x0B: {"ltv", 4},
}

var storeNames = [32]memInfo{
	0x00: {"sbv", 0},
	0x01: {"ssv", 1},
	0x02: {"slv", 2},
	0x03: {"sdv", 3},
	0x04: {"sqv", 4},
	0x05: {"srv", 4},
	0x06: {"spv", 3},
	0x07: {"suv", 3},
	0x08: {"shv", 4},
	0x09: {"sfv", 4},
	0x0A: {"swv", 4},
	0x0B: {"stv", 4},
}
