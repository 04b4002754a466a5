package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

const supportedOemId = "NTFS    "

const (
	exitCodeUserError int = iota + 2
	exitCodeFunctionalError
	exitCodeTechnicalError
)

var isWin = runtime.GOOS == "windows"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "mftdump",
		Short: "Read the Master File Table directly off an NTFS volume or image",
		Long:  "mftdump parses the boot sector and $MFT of an NTFS volume or image by reading the raw device, with no help from the host OS's own filesystem driver.",
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print details about what's going on")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newStatCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeUserError)
	}
}

func fatalf(exitCode int, format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(exitCode)
}

func printVerbose(format string, v ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, v...)
	}
}

func volumePath(arg string) string {
	if isWin {
		return `\\.\` + arg
	}
	return arg
}

func formatBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%dB", b)
	}
	if b < 1048576 {
		return fmt.Sprintf("%.2fKiB", float32(b)/float32(1024))
	}
	if b < 1073741824 {
		return fmt.Sprintf("%.2fMiB", float32(b)/float32(1048576))
	}
	return fmt.Sprintf("%.2fGiB", float32(b)/float32(1073741824))
}

// openVolumeAndBootSector reads and parses the boot sector of the volume at path, returning the opened device handle and parsed
// boot sector together since nearly every subcommand needs both.
func openVolumeAndBootSector(path string) (*deviceHandleAndBootSector, error) {
	h, err := openDevice(path)
	if err != nil {
		return nil, err
	}

	printVerbose("Reading boot sector\n")
	bootSectorData := make([]byte, 512)
	if _, err := h.ReadAt(bootSectorData, 0); err != nil {
		h.Close()
		return nil, fmt.Errorf("unable to read boot sector: %w", err)
	}

	bootSector, err := parseBootSector(bootSectorData)
	if err != nil {
		h.Close()
		return nil, err
	}

	return &deviceHandleAndBootSector{handle: h, bootSector: bootSector}, nil
}
