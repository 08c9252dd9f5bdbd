//go:build linux
// +build linux

package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenCachesSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 12345), 0644))

	f, err := Open(path, O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, int64(12345), f.Size())
	require.GreaterOrEqual(t, f.Fd(), 0)
	require.Equal(t, path, f.Path())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), O_RDONLY, 0)
	require.Error(t, err)
}

func TestPreadPwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f, err := Open(path, O_CREAT|O_RDWR, FILE_MODE)
	require.NoError(t, err)
	defer f.Close()

	payload := []byte("positioned io does not move a shared cursor")
	n, err := f.Pwrite(payload, 100)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	got := make([]byte, len(payload))
	n, err = f.Pread(got, 100)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, got)
}

func TestOpenDirectFallsBack(t *testing.T) {
	// t.TempDir is typically tmpfs, which rejects O_DIRECT; the open must
	// still succeed through the fallback flags.
	path := filepath.Join(t.TempDir(), "data.bin")
	f, err := OpenDirect(path, O_CREAT|O_RDWR, FILE_MODE)
	require.NoError(t, err)
	f.Close()
}

func TestCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	f, err := Open(path, O_CREAT|O_RDWR, FILE_MODE)
	require.NoError(t, err)
	f.Close()
	f.Close()
	require.Equal(t, -1, f.Fd())
}

func TestAllocAligned(t *testing.T) {
	buf, err := AllocAligned(BLOCK_SIZE * 4)
	require.NoError(t, err)
	defer FreeAligned(buf)

	require.Len(t, buf, BLOCK_SIZE*4)
	require.True(t, IsAlignedBuffer(buf, BLOCK_SIZE))
}

func TestIsAlignedBuffer(t *testing.T) {
	buf, err := AllocAligned(BLOCK_SIZE * 2)
	require.NoError(t, err)
	defer FreeAligned(buf)

	require.True(t, IsAlignedBuffer(buf, BLOCK_SIZE))
	require.False(t, IsAlignedBuffer(buf[1:], BLOCK_SIZE))
	require.False(t, IsAlignedBuffer(nil, BLOCK_SIZE))
}

func TestIsAlignedOffset(t *testing.T) {
	require.True(t, IsAlignedOffset(0, BLOCK_SIZE))
	require.True(t, IsAlignedOffset(BLOCK_SIZE*7, BLOCK_SIZE))
	require.False(t, IsAlignedOffset(BLOCK_SIZE+1, BLOCK_SIZE))
}
