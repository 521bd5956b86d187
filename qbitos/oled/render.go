package oled

// RenderFrame converts a row-major 1bpp frame (MSB-first per byte) into the
// page-column buffer and flushes it. The conversion is an 8x8 bit-block
// transpose that bundles colour inversion and the 180-degree panel rotation:
// page, byte-column, row-bit and column-bit order are all reversed in a
// single pass.
//
// h must be divisible by 8. Short frame data renders nothing and returns
// false.
func (b *Buffer) RenderFrame(frame []byte, w, h int) bool {
	bpr := (w + 7) / 8
	pages := h / 8
	if pages <= 0 || pages > Pages || bpr <= 0 || len(frame) < bpr*h {
		return false
	}

	for sp := 0; sp < pages; sp++ {
		dp := pages - 1 - sp
		for sbc := 0; sbc < bpr; sbc++ {
			dbc := bpr - 1 - sbc

			// Read and invert the 8 source rows for this block.
			var r [8]byte
			for row := 0; row < 8; row++ {
				r[row] = ^frame[(sp*8+row)*bpr+sbc]
			}

			// Transpose into vertical-page bytes, row 0 landing in bit 7.
			base := dp*Width + dbc*8
			for col := 0; col < 8; col++ {
				m := byte(0x80) >> uint(col)
				var v byte
				if r[0]&m != 0 {
					v |= 0x80
				}
				if r[1]&m != 0 {
					v |= 0x40
				}
				if r[2]&m != 0 {
					v |= 0x20
				}
				if r[3]&m != 0 {
					v |= 0x10
				}
				if r[4]&m != 0 {
					v |= 0x08
				}
				if r[5]&m != 0 {
					v |= 0x04
				}
				if r[6]&m != 0 {
					v |= 0x02
				}
				if r[7]&m != 0 {
					v |= 0x01
				}
				b.buf[base+7-col] = v
			}
		}
	}

	// Black out the edge byte-columns; the source format carries a
	// one-pixel padding artifact there.
	for p := 0; p < pages; p++ {
		b.buf[p*Width] = 0x00
		b.buf[p*Width+Width-1] = 0x00
	}

	_ = b.Display()
	return true
}

// DrawBitmap merges a page-packed column-major bitmap (one vertical byte per
// column per page, LSB on top) into the buffer at yOffset, horizontally
// shifted by scrollX. Bitmaps wider than the display wrap circularly with a
// ScrollGapPx blank gap between repeats.
func (b *Buffer) DrawBitmap(data []byte, width, height uint16, yOffset, scrollX int16) {
	if len(data) == 0 || width == 0 {
		return
	}
	bmpPages := int16((height + 7) / 8)
	wrap := width > Width
	virtualWidth := int16(width)
	if wrap {
		virtualWidth += ScrollGapPx
	}

	for screenX := int16(0); screenX < Width; screenX++ {
		srcX := screenX + scrollX
		if wrap {
			srcX = ((srcX % virtualWidth) + virtualWidth) % virtualWidth
			if srcX >= int16(width) {
				continue // gap region stays blank
			}
		}
		if srcX < 0 || srcX >= int16(width) {
			continue
		}

		for bmpPage := int16(0); bmpPage < bmpPages; bmpPage++ {
			idx := int(bmpPage)*int(width) + int(srcX)
			if idx >= len(data) {
				continue
			}
			srcByte := data[idx]
			if srcByte == 0 {
				continue
			}

			for bit := uint(0); bit < 8; bit++ {
				if srcByte&(1<<bit) == 0 {
					continue
				}
				pixelY := yOffset + bmpPage*8 + int16(bit)
				if pixelY < 0 || pixelY >= Height {
					continue
				}
				b.buf[int(pixelY/8)*Width+int(screenX)] |= 1 << uint(pixelY%8)
			}
		}
	}
}
