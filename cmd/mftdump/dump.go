package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/t9t/ntfscore/clusterstream"
	"github.com/t9t/ntfscore/mft"
)

var (
	dumpForce    bool
	dumpProgress bool
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <volume> <output file>",
		Short: "Copy the entire $MFT to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0], args[1])
		},
	}
	cmd.Flags().BoolVarP(&dumpForce, "force", "f", false, "overwrite the output file if it already exists")
	cmd.Flags().BoolVarP(&dumpProgress, "progress", "p", false, "show progress while copying")
	return cmd
}

func runDump(volume, outfile string) error {
	start := time.Now()

	v, err := openVolumeAndBootSector(volumePath(volume))
	if err != nil {
		fatalf(exitCodeTechnicalError, "%v\n", err)
	}
	defer v.handle.Close()

	printVerbose("Reading $MFT file record at offset %d (size: %d bytes)\n", v.mftPosition(), v.bootSector.FileRecordSegmentSizeInBytes)
	mftRecordData, err := v.readRecordAt(v.mftPosition())
	if err != nil {
		fatalf(exitCodeTechnicalError, "%v\n", err)
	}

	printVerbose("Parsing $MFT file record\n")
	record, err := mft.ParseRecord(mftRecordData)
	if err != nil {
		fatalf(exitCodeTechnicalError, "unable to parse $MFT record: %v\n", err)
	}

	dataAttributes := record.FindAttributes(mft.AttributeTypeData)
	if len(dataAttributes) == 0 {
		fatalf(exitCodeTechnicalError, "no $DATA attribute found in $MFT record\n")
	}
	if len(dataAttributes) > 1 {
		fatalf(exitCodeTechnicalError, "more than 1 $DATA attribute found in $MFT record\n")
	}

	dataAttribute := dataAttributes[0]
	if dataAttribute.Resident {
		fatalf(exitCodeTechnicalError, "don't know how to handle a resident $DATA attribute in $MFT record\n")
	}
	if len(dataAttribute.Runs) == 0 {
		fatalf(exitCodeTechnicalError, "no runs found in $MFT $DATA attribute\n")
	}

	stream := clusterstream.New(v.handle, dataAttribute.Runs, v.bootSector.BytesPerCluster(),
		dataAttribute.DataSize, dataAttribute.ValidDataSize,
		clusterstream.WithCompressionUnitClusters(dataAttribute.CompressionUnitClusters()))

	out, err := openOutputFile(outfile)
	if err != nil {
		fatalf(exitCodeFunctionalError, "unable to open output file: %v\n", err)
	}
	defer out.Close()

	totalLength := int64(stream.Len())
	printVerbose("Copying %d bytes (%s) of $MFT data to %s\n", totalLength, formatBytes(totalLength), outfile)
	n, err := copyStream(out, stream, totalLength)
	if err != nil {
		fatalf(exitCodeTechnicalError, "error copying data to output file: %v\n", err)
	}
	if n != totalLength {
		fatalf(exitCodeTechnicalError, "expected to copy %d bytes, but copied only %d\n", totalLength, n)
	}

	printVerbose("Finished in %v\n", time.Since(start))
	return nil
}

// copyStream copies totalLength bytes from src, read at increasing offsets, to dst, optionally reporting progress.
func copyStream(dst io.Writer, src io.ReaderAt, totalLength int64) (written int64, err error) {
	buf := make([]byte, 1024*1024)
	totalSize := formatBytes(totalLength)
	onePercent := float64(totalLength) / float64(100.0)

	for written < totalLength {
		if dumpProgress {
			printProgress(written, totalSize, onePercent)
		}

		chunk := buf
		if remaining := totalLength - written; int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		nr, er := src.ReadAt(chunk, written)
		if nr > 0 {
			nw, ew := dst.Write(chunk[:nr])
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if er != nil && er != io.EOF {
			return written, er
		}
		if nr == 0 && er == nil {
			return written, fmt.Errorf("read returned no data and no error")
		}
	}

	if dumpProgress {
		printProgress(written, totalSize, onePercent)
		fmt.Println()
	}
	return written, nil
}

func printProgress(n int64, totalSize string, onePercent float64) {
	percentage := float64(n) / onePercent
	barCount := int(percentage / 2.0)
	spaceCount := 50 - barCount
	fmt.Printf("\r[%s%s] %.2f%% (%s / %s)     ", strings.Repeat("|", barCount), strings.Repeat(" ", spaceCount), percentage, formatBytes(n), totalSize)
}

func openOutputFile(outfile string) (*os.File, error) {
	if dumpForce {
		return os.Create(outfile)
	}
	return os.OpenFile(outfile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
}
