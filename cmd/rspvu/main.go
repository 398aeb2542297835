package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"golang.org/x/sys/cpu"

	"github.com/n64emu/rspvu/pkg/harness"
	"github.com/n64emu/rspvu/pkg/inst"
	"github.com/n64emu/rspvu/pkg/trace"
	"github.com/n64emu/rspvu/pkg/vu"
)

func main() {
	log := logrus.New()

	rootCmd := &cobra.Command{
		Use:   "rspvu",
		Short: "RSP vector-unit emulator tools",
	}

	// disasm command
	var base uint32
	disasmCmd := &cobra.Command{
		Use:   "disasm [file.bin]",
		Short: "Disassemble a flat stream of COP2/LWC2/SWC2 opcodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := readWords(args[0])
			if err != nil {
				return err
			}
			pc := base
			for _, op := range words {
				fmt.Println(inst.Decode(op, pc))
				pc += 4
			}
			return nil
		},
	}
	disasmCmd.Flags().Uint32Var(&base, "base", 0, "Base address of the first instruction")

	// run command
	var dmemPath string
	var tracePath string
	var dumpState bool
	runCmd := &cobra.Command{
		Use:   "run [program.bin]",
		Short: "Execute a flat stream of vector opcodes against a DMEM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := readWords(args[0])
			if err != nil {
				return err
			}

			dmem := make([]byte, vu.DmemLen)
			if dmemPath != "" {
				img, err := os.ReadFile(dmemPath)
				if err != nil {
					return err
				}
				copy(dmem[:vu.DmemSize], img)
			}

			var stepw *trace.StepWriter
			if tracePath != "" {
				f, err := os.Create(tracePath)
				if err != nil {
					return err
				}
				defer f.Close()
				stepw = trace.NewStepWriter(f)
				defer stepw.Flush()
			}

			c := vu.New()
			cpuRegs := &vu.CPU{}
			tracer := trace.NewLogTracer(log)
			pc := base
			for _, op := range words {
				var err error
				switch op >> 26 {
				case 0x12:
					err = c.Op(cpuRegs, op, tracer)
				case 0x32:
					err = c.LWC(op, cpuRegs, dmem, tracer)
				case 0x3A:
					err = c.SWC(op, cpuRegs, dmem, tracer)
				default:
					log.WithField("pc", fmt.Sprintf("%08X", pc)).
						Warnf("skipping non-vector opcode %08X", op)
				}
				if err != nil {
					return fmt.Errorf("at pc %08X: %w", pc, err)
				}
				if stepw != nil {
					if err := stepw.Step(c, pc, op); err != nil {
						return err
					}
				}
				pc += 4
			}

			if dumpState {
				dumpRegs(c)
			}
			return nil
		},
	}
	runCmd.Flags().Uint32Var(&base, "base", 0, "Base address of the first instruction")
	runCmd.Flags().StringVar(&dmemPath, "dmem", "", "DMEM image to preload (up to 4 KiB)")
	runCmd.Flags().StringVar(&tracePath, "trace", env.Str("RSPVU_TRACE", ""), "Write a JSONL step trace to this file")
	runCmd.Flags().BoolVar(&dumpState, "dump", true, "Dump register state after the run")

	// vectors command
	var count int
	var opsPerVec int
	var numWorkers int
	var firstSeed int64
	var output string
	var verifyPath string
	var checkpointPath string
	vectorsCmd := &cobra.Command{
		Use:   "vectors",
		Short: "Generate or verify golden state-fingerprint vectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verifyPath != "" {
				f, err := os.Open(verifyPath)
				if err != nil {
					return err
				}
				defer f.Close()
				total, failed, err := harness.Verify(f, opsPerVec)
				if err != nil {
					return err
				}
				fmt.Printf("%d vectors, %d failed\n", total, failed)
				if failed > 0 {
					return fmt.Errorf("%d vectors failed", failed)
				}
				return nil
			}

			simd := "none"
			if cpu.X86.HasSSE2 {
				simd = "sse2"
			}
			log.WithField("host_simd", simd).
				Info("generating with the portable lane-exact core")

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if checkpointPath != "" {
				if ckpt, err := harness.LoadCheckpoint(checkpointPath); err == nil {
					firstSeed = ckpt.NextSeed
					opsPerVec = ckpt.OpsPerVec
					log.WithField("seed", firstSeed).Info("resuming from checkpoint")
				}
			}

			cfg := harness.Config{
				FirstSeed:  firstSeed,
				Count:      count,
				OpsPerVec:  opsPerVec,
				NumWorkers: numWorkers,
				Verbose:    output != "",
			}
			if err := harness.Run(cfg, out); err != nil {
				return err
			}
			if checkpointPath != "" {
				ckpt := &harness.Checkpoint{
					NextSeed:  firstSeed + int64(count),
					OpsPerVec: opsPerVec,
					Written:   count,
				}
				if err := harness.SaveCheckpoint(checkpointPath, ckpt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	vectorsCmd.Flags().IntVar(&count, "count", 1000, "Number of vectors to generate")
	vectorsCmd.Flags().IntVar(&opsPerVec, "ops", 256, "Instructions per vector")
	vectorsCmd.Flags().IntVar(&numWorkers, "workers", env.Int("RSPVU_WORKERS", 0), "Number of workers (0 = NumCPU)")
	vectorsCmd.Flags().Int64Var(&firstSeed, "seed", 1, "First seed")
	vectorsCmd.Flags().StringVar(&output, "output", env.Str("RSPVU_OUTPUT", ""), "Output JSONL file (default stdout)")
	vectorsCmd.Flags().StringVar(&verifyPath, "verify", "", "Verify an existing vector file instead of generating")
	vectorsCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Checkpoint file for resume")

	rootCmd.AddCommand(disasmCmd, runCmd, vectorsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readWords loads a binary file as big-endian 32-bit opcodes.
func readWords(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%s: length %d is not a multiple of 4", path, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4:])
	}
	return words, nil
}

func dumpRegs(c *vu.Cop2) {
	for i := 0; i < 32; i++ {
		u := c.Reg(i)
		fmt.Printf("$v%02d = %016x%016x\n", i, u.Hi, u.Lo)
	}
	fmt.Printf("vco=%04X vcc=%04X vce=%02X\n", c.VCO(), c.VCC(), c.VCE())
	for i, name := range []string{"acc_lo", "acc_md", "acc_hi"} {
		u := c.Reg(vu.RegAccumLo + i)
		fmt.Printf("%s = %016x%016x\n", name, u.Hi, u.Lo)
	}
}
