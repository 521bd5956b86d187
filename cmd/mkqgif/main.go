// Command mkqgif packs 1bpp frames into a .qgif animation, or inspects an
// existing file.
//
// Frames are given as PBM (P4) images or raw 1024-byte dumps, all 128x64:
//
//	mkqgif -o wave.qgif -delay 80 frame0.pbm frame1.pbm frame2.pbm
//	mkqgif -inspect wave.qgif
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"qbit/qbitos/qgif"
)

func main() {
	out := flag.String("o", "out.qgif", "output file")
	delay := flag.Uint("delay", 100, "per-frame delay in milliseconds")
	inspect := flag.String("inspect", "", "print the header of an existing file and exit")
	flag.Parse()

	if *inspect != "" {
		if err := runInspect(*inspect); err != nil {
			fmt.Fprintln(os.Stderr, "mkqgif:", err)
			os.Exit(1)
		}
		return
	}

	if err := runEncode(*out, uint16(*delay), flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "mkqgif:", err)
		os.Exit(1)
	}
}

func runInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h, err := qgif.ParseHeader(data)
	if err != nil {
		return err
	}
	want := int(h.DataOffset()) + int(h.FrameCount)*qgif.FrameSize
	fmt.Printf("%s: %d frames, %dx%d, %d bytes (want %d)\n",
		path, h.FrameCount, h.Width, h.Height, len(data), want)
	for i := 0; i < int(h.FrameCount); i++ {
		d := binary.LittleEndian.Uint16(data[qgif.HeaderSize+2*i:])
		fmt.Printf("  frame %3d: %dms\n", i, d)
	}
	if len(data) != want {
		return errors.New("size mismatch, file is truncated or padded")
	}
	return nil
}

func runEncode(out string, delay uint16, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no input frames")
	}
	if len(paths) > qgif.MaxFrames {
		return fmt.Errorf("%d frames, max %d", len(paths), qgif.MaxFrames)
	}
	if delay == 0 {
		return errors.New("delay must be positive")
	}

	frames := make([][]byte, 0, len(paths))
	for _, p := range paths {
		frame, err := readFrame(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		frames = append(frames, frame)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	hdr := [qgif.HeaderSize]byte{byte(len(frames))}
	binary.LittleEndian.PutUint16(hdr[1:3], qgif.FrameWidth)
	binary.LittleEndian.PutUint16(hdr[3:5], qgif.FrameHeight)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	var db [2]byte
	binary.LittleEndian.PutUint16(db[:], delay)
	for range frames {
		if _, err := w.Write(db[:]); err != nil {
			return err
		}
	}
	for _, frame := range frames {
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%s: %d frames, %dms each\n", out, len(frames), delay)
	return nil
}

// readFrame loads one 128x64 1bpp frame from a P4 PBM or a raw dump.
func readFrame(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic, err := r.Peek(2)
	if err != nil {
		return nil, err
	}
	if string(magic) == "P4" {
		if err := skipPBMHeader(r); err != nil {
			return nil, err
		}
	}

	frame := make([]byte, qgif.FrameSize)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, fmt.Errorf("frame data: %w", err)
	}
	return frame, nil
}

// skipPBMHeader consumes "P4", whitespace/comments, and the dimensions,
// which must match the device panel.
func skipPBMHeader(r *bufio.Reader) error {
	var magic string
	if _, err := fmt.Fscan(r, &magic); err != nil {
		return err
	}
	var w, h int
	for n := 0; n < 2; {
		if err := skipSpaceAndComments(r); err != nil {
			return err
		}
		var v int
		if _, err := fmt.Fscan(r, &v); err != nil {
			return err
		}
		if n == 0 {
			w = v
		} else {
			h = v
		}
		n++
	}
	if w != qgif.FrameWidth || h != qgif.FrameHeight {
		return fmt.Errorf("pbm is %dx%d, want %dx%d", w, h, qgif.FrameWidth, qgif.FrameHeight)
	}
	// Single whitespace byte separates the header from the raster.
	_, err := r.ReadByte()
	return err
}

func skipSpaceAndComments(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case b == '#':
			if _, err := r.ReadString('\n'); err != nil {
				return err
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			// skip
		default:
			return r.UnreadByte()
		}
	}
}
