package store

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	if codecErr != nil {
		return fmt.Errorf("init zstd codec: %w", codecErr)
	}
	return nil
}

func compress(value []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, err
	}
	return encoder.EncodeAll(value, make([]byte, 0, len(value)/2+16)), nil
}

func decompress(raw []byte) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, err
	}
	return decoder.DecodeAll(raw, nil)
}
