package fusefs

import "syscall"

// maxFileSize bounds the content a write or truncate may produce. Files live
// in memory, so a sparse write far past the end would otherwise allocate the
// whole gap.
const maxFileSize = 64 << 20

func safeIntToUint64(n int) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// splice writes data into content at offset, zero-filling any gap. It fails
// with EFBIG when the result would exceed maxFileSize.
func splice(content []byte, offset int64, data []byte) ([]byte, error) {
	if offset < 0 {
		offset = 0
	}
	if offset > maxFileSize || offset+int64(len(data)) > maxFileSize {
		return nil, syscall.EFBIG
	}
	end := int(offset) + len(data)
	if end > len(content) {
		grown := make([]byte, end)
		copy(grown, content)
		content = grown
	}
	copy(content[offset:], data)
	return content, nil
}

// resize truncates or zero-extends content to size bytes. It fails with
// EFBIG when size exceeds maxFileSize.
func resize(content []byte, size uint64) ([]byte, error) {
	if size > maxFileSize {
		return nil, syscall.EFBIG
	}
	if int(size) <= len(content) {
		return content[:size], nil
	}
	grown := make([]byte, size)
	copy(grown, content)
	return grown, nil
}
