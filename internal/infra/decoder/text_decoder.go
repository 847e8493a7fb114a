package decoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TextDecoder reads frames produced by keyboard-wedge or serial scanners:
// UTF-8 text with one code per line. Blank lines are dropped.
type TextDecoder struct{}

func NewTextDecoder() *TextDecoder {
	return &TextDecoder{}
}

func (d *TextDecoder) Decode(ctx context.Context, frame []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utf8.Valid(frame) {
		return nil, fmt.Errorf("frame is not valid utf-8")
	}

	var codes []string
	sc := bufio.NewScanner(bytes.NewReader(frame))
	for sc.Scan() {
		if code := strings.TrimSpace(sc.Text()); code != "" {
			codes = append(codes, code)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}
