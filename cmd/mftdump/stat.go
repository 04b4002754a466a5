package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/t9t/ntfscore/clusterstream"
	"github.com/t9t/ntfscore/mft"
	"github.com/t9t/ntfscore/runlist"
)

var statMftOnly bool

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <volume> <record number>",
		Short: "Parse a single MFT record and print its attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recordNumber uint64
			if _, err := fmt.Sscanf(args[1], "%d", &recordNumber); err != nil {
				return fmt.Errorf("invalid record number %q: %w", args[1], err)
			}
			return runStat(args[0], recordNumber)
		},
	}
	cmd.Flags().BoolVar(&statMftOnly, "mft-only", false, "don't follow non-resident attribute data; print structural info only")
	return cmd
}

func runStat(volume string, recordNumber uint64) error {
	v, err := openVolumeAndBootSector(volumePath(volume))
	if err != nil {
		fatalf(exitCodeTechnicalError, "%v\n", err)
	}
	defer v.handle.Close()

	clusterSize := v.bootSector.BytesPerCluster()
	recordSize := v.bootSector.FileRecordSegmentSizeInBytes

	printVerbose("Reading $MFT's own file record at offset %d\n", v.mftPosition())
	mftRecordData, err := v.readRecordAt(v.mftPosition())
	if err != nil {
		fatalf(exitCodeTechnicalError, "%v\n", err)
	}

	mftRecord, err := mft.ParseRecord(mftRecordData)
	if err != nil {
		fatalf(exitCodeTechnicalError, "unable to parse $MFT record: %v\n", err)
	}

	mftDataAttrs := mftRecord.FindAttributes(mft.AttributeTypeData)
	if len(mftDataAttrs) != 1 || mftDataAttrs[0].Resident {
		fatalf(exitCodeTechnicalError, "expected exactly one non-resident $DATA attribute on $MFT's own record\n")
	}
	mftDataAttr := mftDataAttrs[0]

	mftStream := clusterstream.New(v.handle, mftDataAttr.Runs, clusterSize, mftDataAttr.DataSize, mftDataAttr.ValidDataSize,
		clusterstream.WithCompressionUnitClusters(mftDataAttr.CompressionUnitClusters()))

	recordOffset := int64(recordNumber) * int64(recordSize)
	recordData := make([]byte, recordSize)
	if _, err := mftStream.ReadAt(recordData, recordOffset); err != nil {
		fatalf(exitCodeTechnicalError, "unable to read record %d from $MFT data stream: %v\n", recordNumber, err)
	}

	record, err := mft.ParseRecord(recordData)
	if err != nil {
		fatalf(exitCodeTechnicalError, "unable to parse record %d: %v\n", recordNumber, err)
	}

	fmt.Printf("record %d: file reference %#x, base record %#x, flags %#04x, hard links %d, size %d/%d\n",
		recordNumber, record.FileReference.Packed(), record.BaseRecordReference.Packed(), record.Flags,
		record.HardLinkCount, record.ActualSize, record.AllocatedSize)

	flags := mft.ReadFlags(0)
	if statMftOnly {
		flags = mft.ReadFlagMftOnly
	}

	openStream := func(f *mft.AttributeFacade) (mft.ClusterStream, error) {
		return openAttributeStream(v.handle, f, clusterSize)
	}
	openVector := func(f *mft.AttributeFacade) (mft.ClusterBlockVector, error) {
		stream, err := openAttributeStream(v.handle, f, clusterSize)
		if err != nil {
			return nil, err
		}
		return clusterstream.NewBlockVector(stream, clusterSize, 4), nil
	}

	for i := range record.Attributes {
		attr := record.Attributes[i]
		fmt.Printf("  attribute %d: %s", attr.AttributeId, attr.Type.Name())
		if attr.Name != "" {
			fmt.Printf(" (%q)", attr.Name)
		}
		if attr.Resident {
			fmt.Printf(", resident, %d bytes\n", len(attr.Data))
		} else {
			fmt.Printf(", non-resident, %d/%d bytes, %d runs\n", attr.DataSize, attr.ValidDataSize, len(attr.Runs))
		}

		facade, err := mft.NewAttributeFacade(&attr, nil)
		if err != nil {
			fatalf(exitCodeTechnicalError, "unable to build attribute facade: %v\n", err)
		}

		value, err := mft.MaterializeValue(facade, openStream, openVector, flags)
		if err != nil {
			fmt.Printf("    (unable to materialize value: %v)\n", err)
			continue
		}
		if value != nil {
			fmt.Printf("    %+v\n", value)
		}
	}

	return nil
}

// openAttributeStream builds a clusterstream.Stream over f's non-resident data, the shared plumbing behind both
// $SECURITY_DESCRIPTOR's stream opener and $BITMAP's vector opener.
func openAttributeStream(dev clusterstream.Device, f *mft.AttributeFacade, clusterSize int) (*clusterstream.Stream, error) {
	count := f.DataRunCount()
	if count == 0 {
		return nil, fmt.Errorf("attribute has no run list to stream")
	}
	runs := make([]runlist.Run, count)
	for i := 0; i < count; i++ {
		run, _ := f.DataRunAt(i)
		runs[i] = run
	}
	return clusterstream.New(dev, runs, clusterSize, f.DataSize(), f.ValidDataSize()), nil
}
