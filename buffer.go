package timedwriter

import "strconv"

const (
	minBufferSize = 1024
	fillerByte    = '\r'
)

// writeBuffer is the scratch block handed to every write. It is allocated
// once per run and stamped in place with the iteration index.
type writeBuffer struct {
	data []byte
}

func newWriteBuffer(blockSize int) *writeBuffer {
	size := max(blockSize, minBufferSize)
	data := make([]byte, size)
	for i := range data {
		data[i] = fillerByte
	}
	return &writeBuffer{data: data}
}

// stamp writes "<iter>\n" at the front of the buffer and returns its length.
func (b *writeBuffer) stamp(iter int) int {
	line := strconv.AppendInt(b.data[:0], int64(iter), 10)
	line = append(line, '\n')
	return len(line)
}

// block returns the first n bytes of the buffer.
func (b *writeBuffer) block(n int) []byte {
	return b.data[:n]
}

func (b *writeBuffer) size() int {
	return len(b.data)
}

func (b *writeBuffer) release() {
	b.data = nil
}
