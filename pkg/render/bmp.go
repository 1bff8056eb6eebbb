package render

import (
	"encoding/binary"
	"fmt"
	"os"
)

// writeBMP32 writes an uncompressed 32-bit BGRA Windows bitmap to path.
// pixelAt is called in bottom-up row order (BMP's native row order) and
// must return the B, G, R, A bytes for pixel (x, y).
//
// No BMP encoder exists anywhere in the reference stack, so this stays on
// encoding/binary rather than pulling in a library for one file format.
func writeBMP32(path string, width, height int, pixelAt func(x, y int) (b, g, r, a uint8)) error {
	const fileHeaderSize = 14
	const infoHeaderSize = 40
	pixelDataSize := width * height * 4
	fileSize := fileHeaderSize + infoHeaderSize + pixelDataSize

	buf := make([]byte, fileSize)

	// BITMAPFILEHEADER
	buf[0], buf[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(buf[2:6], uint32(fileSize))
	binary.LittleEndian.PutUint32(buf[6:10], 0)
	binary.LittleEndian.PutUint32(buf[10:14], fileHeaderSize+infoHeaderSize)

	// BITMAPINFOHEADER
	h := buf[fileHeaderSize:]
	binary.LittleEndian.PutUint32(h[0:4], infoHeaderSize)
	binary.LittleEndian.PutUint32(h[4:8], uint32(width))
	binary.LittleEndian.PutUint32(h[8:12], uint32(height)) // positive: bottom-up rows
	binary.LittleEndian.PutUint16(h[12:14], 1)             // planes
	binary.LittleEndian.PutUint16(h[14:16], 32)            // bits per pixel
	binary.LittleEndian.PutUint32(h[16:20], 0)             // BI_RGB, uncompressed
	binary.LittleEndian.PutUint32(h[20:24], uint32(pixelDataSize))
	binary.LittleEndian.PutUint32(h[24:28], 0)
	binary.LittleEndian.PutUint32(h[28:32], 0)
	binary.LittleEndian.PutUint32(h[32:36], 0)
	binary.LittleEndian.PutUint32(h[36:40], 0)

	pixels := buf[fileHeaderSize+infoHeaderSize:]
	i := 0
	for y := height - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			b, g, r, a := pixelAt(x, y)
			pixels[i] = b
			pixels[i+1] = g
			pixels[i+2] = r
			pixels[i+3] = a
			i += 4
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write bmp: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("write bmp: %w", err)
	}
	return nil
}
