package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Weight file format constants
const (
	MagicNumber = 0x46524B53 // "FRKS" - feature-based, RKISS-seeded quantization
	Version     = 2          // v2: single hidden layer, king-bucketed HalfKA features
)

// FileHeader is the header of the weight file. L2Size is retained for
// format stability but is always 0 — this architecture has no second
// hidden layer.
type FileHeader struct {
	Magic   uint32
	Version uint32
	L1Size  uint32
	L2Size  uint32
}

// LoadWeights loads network weights from a binary file.
// File format:
//   - Header: Magic, Version, L1Size, L2Size (4 bytes each)
//   - FeatureWeights: NumFeatures * HLSize * int16
//   - FeatureBias: HLSize * int16
//   - OutputWeights0, OutputWeights1: HLSize * int16 each
//   - OutputBias: int32
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// SaveWeights saves network weights to a binary file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	defer f.Close()

	header := FileHeader{
		Magic:   MagicNumber,
		Version: Version,
		L1Size:  HLSize,
		L2Size:  0,
	}
	if err := binary.Write(f, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < NumFeatures; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("failed to write feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("failed to write feature bias: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights0); err != nil {
		return fmt.Errorf("failed to write output weights (own): %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputWeights1); err != nil {
		return fmt.Errorf("failed to write output weights (opp): %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("failed to write output bias: %w", err)
	}
	return nil
}

// LoadWeightsFromReader loads network weights from an io.Reader.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, header.Magic)
	}
	if header.Version != Version {
		return fmt.Errorf("unsupported version: expected %d, got %d", Version, header.Version)
	}
	if header.L1Size != HLSize {
		return fmt.Errorf("hidden layer size mismatch: expected %d, got %d", HLSize, header.L1Size)
	}

	for i := 0; i < NumFeatures; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("failed to read feature weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("failed to read feature bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights0); err != nil {
		return fmt.Errorf("failed to read output weights (own): %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights1); err != nil {
		return fmt.Errorf("failed to read output weights (opp): %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("failed to read output bias: %w", err)
	}
	return nil
}
