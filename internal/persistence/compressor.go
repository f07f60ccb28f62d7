package persistence

import (
	"beelandr/internal/persistence/interfaces"
	"beelandr/internal/structures"
	"fmt"
	"github.com/klauspost/compress/zstd"
)

// maxSnapshotSize bounds the decoded size of a store file, well above any
// store the quota allows.
const maxSnapshotSize = 256 << 20

// SnapshotCompressor zstd-encodes store snapshots at a configurable level.
type SnapshotCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewSnapshotCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	level := zstd.SpeedDefault
	if name := conf.Storage.Compression; name != "" {
		ok, l := zstd.EncoderLevelFromString(name)
		if !ok {
			return nil, fmt.Errorf("unknown compression level %q", name)
		}
		level = l
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxSnapshotSize))
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &SnapshotCompressor{encoder: encoder, decoder: decoder}, nil
}

func (c *SnapshotCompressor) Compress(snapshot []byte) ([]byte, error) {
	return c.encoder.EncodeAll(snapshot, nil), nil
}

func (c *SnapshotCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return out, nil
}

func (c *SnapshotCompressor) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
