//go:build !tinygo

package main

import (
	"context"
	"errors"
	"io"
)

// bridge copies in to the board and the board to out until ctx is done or
// either side closes. Line feeds from the terminal are sent as CR LF.
func bridge(ctx context.Context, board io.ReadWriter, in io.Reader, out io.Writer) error {
	errc := make(chan error, 2)
	go func() {
		_, err := io.Copy(out, board)
		errc <- err
	}()
	go func() {
		errc <- copyCRLF(board, in)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
}

func copyCRLF(dst io.Writer, src io.Reader) error {
	buf := make([]byte, 256)
	line := make([]byte, 0, 512)
	for {
		n, err := src.Read(buf)
		line = line[:0]
		for _, c := range buf[:n] {
			if c == '\n' {
				line = append(line, '\r')
			}
			line = append(line, c)
		}
		if len(line) > 0 {
			if _, werr := dst.Write(line); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
