package devices

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
)

// Table file defaults.
const (
	DefaultTableBits = 8
	DefaultTableBase = 16
)

// TableData is the content of a table file: a flat bit string, bit 0 of word 0
// first, and the word width.
type TableData struct {
	Bits  string
	Width int
	Words int
}

// ReadTable parses a table file. The format is line based:
//
//	# comment
//	BITS=4        word width for the following words (default 8)
//	BASE=HEX      HEX, DEC or BIN (default HEX)
//	0 1 2 A F     whitespace separated words
//
// Only the low BITS bits of each word are kept. BITS may change between
// words but the last value is the width reported.
func ReadTable(r io.Reader) (TableData, error) {
	var (
		td   = TableData{Width: DefaultTableBits}
		base = DefaultTableBase
		b    strings.Builder
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if key, value, ok := strings.Cut(text, "="); ok {
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			switch strings.ToUpper(key) {
			case "BITS":
				n, err := strconv.Atoi(value)
				if err != nil || n < 1 || n > logic.MaxWidth {
					return TableData{}, errors.Errorf("line %d: invalid BITS %q", line, value)
				}
				td.Width = n
			case "BASE":
				var ok bool
				if base, ok = map[string]int{"HEX": 16, "DEC": 10, "BIN": 2}[strings.ToUpper(value)]; !ok {
					return TableData{}, errors.Errorf("line %d: invalid BASE %q (valid: HEX, DEC, BIN)", line, value)
				}
			default:
				return TableData{}, errors.Errorf("line %d: unknown key %q", line, key)
			}
			continue
		}
		for _, word := range strings.Fields(text) {
			x, err := strconv.ParseUint(word, base, 64)
			if err != nil {
				return TableData{}, errors.Wrapf(err, "line %d: word %q", line, word)
			}
			b.WriteString(logic.FromUint64(td.Width, x).String())
			td.Words++
		}
	}
	if err := sc.Err(); err != nil {
		return TableData{}, errors.Wrap(err, "reading table")
	}
	td.Bits = b.String()
	return td, nil
}

// LoadTable reads the table file at path.
func LoadTable(path string) (TableData, error) {
	f, err := os.Open(path)
	if err != nil {
		return TableData{}, errors.Wrap(err, "opening table")
	}
	defer f.Close()
	td, err := ReadTable(f)
	if err != nil {
		return TableData{}, errors.Wrap(err, path)
	}
	return td, nil
}
