//go:build linux
// +build linux

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/velakur/gdsio"
	"github.com/velakur/gdsio/internal/cufile"
	"github.com/velakur/gdsio/internal/fs"
)

var (
	flagSize    int64
	flagOffset  int64
	flagSlice   int64
	flagWorkers int
	flagHost    bool
)

var rootCmd = &cobra.Command{
	Use:           "gdsprobe",
	Short:         "Probe and benchmark the direct-storage path",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report policy and driver availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cufile.ConfigInstance()
		if err != nil {
			return err
		}
		fmt.Printf("policy:       %s\n", cfg.Policy)
		if cfg.ConfigPath != "" {
			fmt.Printf("driver conf:  %s\n", cfg.ConfigPath)
		}
		if !cfg.Policy.Enabled() {
			fmt.Println("direct path:  disabled by policy")
			return nil
		}
		if _, err := cufile.Instance(); err != nil {
			fmt.Printf("direct path:  unavailable (%v)\n", err)
			return nil
		}
		fmt.Println("direct path:  available")
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Benchmark a sliced read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagHost {
			return hostRead(args[0])
		}
		in, err := gdsio.NewAcceleratedInput(args[0], gdsio.Config{
			SliceSize: flagSlice,
			Workers:   flagWorkers,
		})
		if err != nil {
			return err
		}
		if in == nil {
			return fmt.Errorf("accelerated path unavailable, re-run with --host")
		}
		defer in.Close()

		size := flagSize
		if size <= 0 || size > in.Size()-flagOffset {
			size = in.Size() - flagOffset
		}
		buf := make([]byte, size)
		start := time.Now()
		n, err := in.ReadAt(buf, flagOffset)
		if err != nil {
			return err
		}
		report("read", n, time.Since(start))
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Benchmark a sliced write of zero-filled data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagHost {
			return hostWrite(args[0])
		}
		out, err := gdsio.NewAcceleratedOutput(args[0], gdsio.Config{
			SliceSize: flagSlice,
			Workers:   flagWorkers,
		})
		if err != nil {
			return err
		}
		if out == nil {
			return fmt.Errorf("accelerated path unavailable, re-run with --host")
		}
		defer out.Close()

		buf := make([]byte, flagSize)
		start := time.Now()
		if err := out.Write(buf, flagOffset); err != nil {
			return err
		}
		report("write", flagSize, time.Since(start))
		return nil
	},
}

// hostRead reads through plain positioned syscalls with an aligned buffer,
// for comparing against the direct path.
func hostRead(path string) error {
	f, err := fs.OpenDirect(path, fs.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	size := flagSize
	if size <= 0 || size > f.Size()-flagOffset {
		size = f.Size() - flagOffset
	}
	buf, err := fs.AllocAligned(int(size))
	if err != nil {
		return err
	}
	defer fs.FreeAligned(buf)

	start := time.Now()
	n, err := f.Pread(buf, flagOffset)
	if err != nil {
		return err
	}
	report("host read", int64(n), time.Since(start))
	return nil
}

func hostWrite(path string) error {
	f, err := fs.OpenDirect(path, fs.O_CREAT|fs.O_RDWR, fs.FILE_MODE)
	if err != nil {
		return err
	}
	defer f.Close()

	buf, err := fs.AllocAligned(int(flagSize))
	if err != nil {
		return err
	}
	defer fs.FreeAligned(buf)

	start := time.Now()
	n, err := f.Pwrite(buf, flagOffset)
	if err != nil {
		return err
	}
	report("host write", int64(n), time.Since(start))
	return nil
}

func report(op string, n int64, d time.Duration) {
	mib := float64(n) / (1 << 20)
	fmt.Printf("%s: %d bytes in %v (%.1f MiB/s)\n", op, n, d, mib/d.Seconds())
}

func init() {
	for _, c := range []*cobra.Command{readCmd, writeCmd} {
		c.Flags().Int64Var(&flagSize, "size", 64<<20, "bytes to transfer")
		c.Flags().Int64Var(&flagOffset, "offset", 0, "file offset")
		c.Flags().Int64Var(&flagSlice, "slice", gdsio.DefaultSliceSize, "slice size in bytes")
		c.Flags().IntVar(&flagWorkers, "workers", gdsio.DefaultWorkers, "worker pool size")
		c.Flags().BoolVar(&flagHost, "host", false, "use the plain host path instead")
	}
	rootCmd.AddCommand(probeCmd, readCmd, writeCmd)
}
