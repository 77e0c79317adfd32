// Package fingerprint computes the content hash of files before they are uploaded.
//
// The hash is a 2-level blake2b tree: leaves of a fixed size are hashed in parallel,
// then the root hash is computed over the concatenated leaf digests.
package fingerprint

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"runtime"
	"sync"

	units "github.com/docker/go-units"
	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

type chunkInput struct {
	part       int
	partBuffer []byte
	lastChunk  bool
}

// Option for the fingerprint maker
type Option func(*Maker)

// LeafSize sets the size of the leaves of the hash tree. It defaults to 5MB.
func LeafSize(sz int64) Option {
	return func(m *Maker) {
		if sz > 0 {
			m.leafSize = uint32(sz)
		}
	}
}

// NumberOfWorkers sets the number of leaves hashed in parallel. It defaults to the number of CPUs.
func NumberOfWorkers(no int) Option {
	return func(m *Maker) {
		if no > 0 {
			m.numberOfWorkers = no
		}
	}
}

// Size of the leaf digests, in bytes
func Size(sz uint8) Option {
	return func(m *Maker) {
		if sz > 0 && sz <= blake2b.Size {
			m.size = sz
		}
	}
}

// FileSystem to read files from. It defaults to the OS file system.
func FileSystem(fs afero.Fs) Option {
	return func(m *Maker) {
		if fs != nil {
			m.fs = fs
		}
	}
}

// New fingerprint maker
func New(opts ...Option) *Maker {
	m := &Maker{
		leafSize:        uint32(5 * units.MB),
		numberOfWorkers: runtime.NumCPU(),
		size:            blake2b.Size,
		fs:              afero.NewOsFs(),
	}

	for _, apply := range opts {
		apply(m)
	}
	return m
}

// Maker computes fingerprints
type Maker struct {
	size            uint8
	leafSize        uint32
	numberOfWorkers int
	fs              afero.Fs
}

// File computes the hex-encoded fingerprint of a file, and reports its size
func (m *Maker) File(path string) (string, int64, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	cr := &countingReader{r: f}
	digest, err := m.Process(cr)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(digest), cr.n, nil
}

// Process computes the fingerprint of a stream
func (m *Maker) Process(r io.Reader) ([]byte, error) {
	g, ctx := errgroup.WithContext(context.Background())
	chunks := make(chan chunkInput)

	var mx sync.Mutex
	digests := make(map[int][]byte)

	g.Go(func() error {
		defer close(chunks)

		current, err := m.readChunk(r)
		if err != nil {
			return err
		}
		for part := 0; ; part++ {
			next, err := m.readChunk(r)
			if err != nil {
				return err
			}
			// a leaf is last when nothing follows, so a stream of an exact multiple of the leaf size ends on a full leaf
			lastChunk := len(next) == 0
			select {
			case chunks <- chunkInput{part: part, partBuffer: current, lastChunk: lastChunk}:
			case <-ctx.Done():
				return ctx.Err()
			}
			if lastChunk {
				return nil
			}
			current = next
		}
	})

	for i := 0; i < m.numberOfWorkers; i++ {
		g.Go(func() error {
			for c := range chunks {
				digest, err := m.leafDigest(c)
				if err != nil {
					return err
				}
				mx.Lock()
				digests[c.part] = digest
				mx.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// concatenate leaf digests in order
	sz := int(m.size)
	b := make([]byte, len(digests)*sz)
	for index, val := range digests {
		offset := sz * index
		copy(b[offset:offset+sz], val)
	}

	rootBlake, err := blake2b.New(&blake2b.Config{
		Size: blake2b.Size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    0,
			NodeDepth:     1,
			InnerHashSize: m.size,
			IsLastNode:    true,
		},
	})
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(rootBlake, bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return rootBlake.Sum(nil), nil
}

func (m *Maker) readChunk(r io.Reader) ([]byte, error) {
	buf := make([]byte, m.leafSize)
	n, err := io.ReadFull(r, buf)
	switch err {
	case nil:
		return buf, nil
	case io.EOF, io.ErrUnexpectedEOF:
		return buf[:n], nil
	default:
		return nil, err
	}
}

func (m *Maker) leafDigest(c chunkInput) ([]byte, error) {
	blake, err := blake2b.New(&blake2b.Config{
		Size: m.size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    uint64(c.part),
			NodeDepth:     0,
			InnerHashSize: m.size,
			IsLastNode:    c.lastChunk,
		},
	})
	if err != nil {
		return nil, err
	}
	if _, err = blake.Write(c.partBuffer); err != nil {
		return nil, err
	}
	return blake.Sum(nil), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
