// Package rasterfile stores unclamped renders so they can be re-exposed or
// compared without tracing the scene again.
//
// The layout is an 8-byte little-endian header length, a protobuf-encoded
// google.protobuf.Struct header, and a zlib stream of float64 samples in
// row-major RGB order.
package rasterfile

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"whitted/rgb"
	"whitted/scene"
)

const layoutVersion = 1

// Headers are a handful of fields; anything larger is a corrupt file.
const maxHeaderLength = 1 << 20

// Header describes the samples that follow it.
type Header struct {
	Cols, Rows int

	// Name of the render mode that produced the samples.
	Mode string
}

func (h Header) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"layout_version": layoutVersion,
		"cols":           h.Cols,
		"rows":           h.Rows,
		"mode":           h.Mode,
	})
}

func headerFromStruct(s *structpb.Struct) (Header, error) {
	f := s.GetFields()
	if v := f["layout_version"].GetNumberValue(); v != layoutVersion {
		return Header{}, fmt.Errorf("bad data layout version: %v", v)
	}
	h := Header{
		Cols: int(f["cols"].GetNumberValue()),
		Rows: int(f["rows"].GetNumberValue()),
		Mode: f["mode"].GetStringValue(),
	}
	if h.Cols < 0 || h.Rows < 0 {
		return Header{}, fmt.Errorf("bad dimensions %dx%d", h.Cols, h.Rows)
	}
	return h, nil
}

func Write(w io.Writer, mode string, im scene.Raster) error {
	hdr, err := Header{Cols: im.Width(), Rows: im.Height(), Mode: mode}.toStruct()
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	samples := make([]float64, 0, 3*im.Width()*im.Height())
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			c := im.At(x, y)
			samples = append(samples, c[0], c[1], c[2])
		}
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("while writing samples: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

func Read(in io.Reader) (Header, *scene.Image, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return Header{}, nil, fmt.Errorf("while reading header length: %w", err)
	}

	if headerLength > maxHeaderLength {
		return Header{}, nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return Header{}, nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	s := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, s); err != nil {
		return Header{}, nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	hdr, err := headerFromStruct(s)
	if err != nil {
		return Header{}, nil, err
	}

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return Header{}, nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	samples := make([]float64, 3*hdr.Cols*hdr.Rows)
	if err := binary.Read(zipReader, binary.LittleEndian, samples); err != nil {
		return Header{}, nil, fmt.Errorf("while reading samples: %w", err)
	}

	im := scene.NewImage(hdr.Cols, hdr.Rows)
	for i := range im.Pix {
		im.Pix[i] = rgb.T{samples[3*i], samples[3*i+1], samples[3*i+2]}
	}
	return hdr, im, nil
}

func ReadFile(name string) (Header, *scene.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return Header{}, nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return Read(f)
}
