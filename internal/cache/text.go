package cache

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil)
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil)
	})
	return zstdEnc, zstdDec, zstdErr
}

// PutText stores text zstd-compressed under key.
func (c *FilesystemCache) PutText(key, source, text string) error {
	enc, _, err := codecs()
	if err != nil {
		return err
	}
	packed := enc.EncodeAll([]byte(text), make([]byte, 0, len(text)/2))
	_, err = c.Put(key, source, bytes.NewReader(packed))
	return err
}

// GetText returns the decompressed text stored under key. ok is false on a
// miss; a present but unreadable entry is an error and is evicted.
func (c *FilesystemCache) GetText(key string) (text string, ok bool, err error) {
	path, _, err := c.Get(key)
	if err != nil {
		return "", false, nil
	}

	_, dec, err := codecs()
	if err != nil {
		return "", false, err
	}

	packed, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	raw, err := dec.DecodeAll(packed, nil)
	if err != nil {
		_ = c.Delete(key)
		return "", false, fmt.Errorf("decode cached text %s: %w", key, err)
	}
	return string(raw), true, nil
}
