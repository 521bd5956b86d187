// Package melody parses RTTTL ringtone strings and plays them on the buzzer
// without blocking the task loop.
package melody

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Built-in event melodies.
const (
	Boot   = "tronboot:d=16,o=5,b=160:c,16p,g,16p,c6,16p,b,8a"
	Touch  = "coin:d=16,o=5,b=600:b5,e6"
	Poke   = "poke:d=16,o=5,b=200:c6,e6,g6,c7"
	Claim  = "claim:d=8,o=5,b=180:e,g,b"
	Mute   = "mute:d=16,o=5,b=200:g5,c5"
	Unmute = "unmute:d=16,o=5,b=200:c5,g5"
)

var ErrSyntax = errors.New("melody: bad rtttl")

// Note is one tone or rest. FreqHz 0 means rest.
type Note struct {
	FreqHz uint16
	Ms     uint16
}

// Melody is a parsed tune.
type Melody struct {
	Name  string
	Notes []Note
}

// semitone offsets from C within an octave; -1 marks invalid.
var semis = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// Parse decodes an RTTTL string: "name:d=<dur>,o=<oct>,b=<bpm>:notes".
func Parse(s string) (*Melody, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: want 3 sections", ErrSyntax)
	}

	m := &Melody{Name: strings.TrimSpace(parts[0])}

	defDur, defOct, bpm := 4, 6, 63
	for _, kv := range strings.Split(parts[1], ",") {
		eq := strings.SplitN(strings.TrimSpace(kv), "=", 2)
		if len(eq) != 2 {
			return nil, fmt.Errorf("%w: control %q", ErrSyntax, kv)
		}
		v, err := strconv.Atoi(eq[1])
		if err != nil {
			return nil, fmt.Errorf("%w: control %q", ErrSyntax, kv)
		}
		switch eq[0] {
		case "d":
			defDur = v
		case "o":
			defOct = v
		case "b":
			bpm = v
		default:
			return nil, fmt.Errorf("%w: control %q", ErrSyntax, kv)
		}
	}
	if defDur <= 0 || bpm <= 0 {
		return nil, fmt.Errorf("%w: non-positive control", ErrSyntax)
	}
	wholeMs := 4 * 60000 / bpm

	for _, tok := range strings.Split(parts[2], ",") {
		tok = strings.TrimSpace(strings.ToLower(tok))
		if tok == "" {
			continue
		}
		n, err := parseNote(tok, defDur, defOct, wholeMs)
		if err != nil {
			return nil, err
		}
		m.Notes = append(m.Notes, n)
	}
	if len(m.Notes) == 0 {
		return nil, fmt.Errorf("%w: no notes", ErrSyntax)
	}
	return m, nil
}

func parseNote(tok string, defDur, defOct, wholeMs int) (Note, error) {
	i := 0
	dur := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		dur = dur*10 + int(tok[i]-'0')
		i++
	}
	if dur == 0 {
		dur = defDur
	}
	if i >= len(tok) {
		return Note{}, fmt.Errorf("%w: note %q", ErrSyntax, tok)
	}

	ch := tok[i]
	i++
	var semi int
	rest := ch == 'p'
	if !rest {
		var ok bool
		semi, ok = semis[ch]
		if !ok {
			return Note{}, fmt.Errorf("%w: note %q", ErrSyntax, tok)
		}
	}
	if i < len(tok) && tok[i] == '#' {
		semi++
		i++
	}

	// A dot may come before or after the octave digit.
	dotted := false
	if i < len(tok) && tok[i] == '.' {
		dotted = true
		i++
	}
	oct := defOct
	if i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		oct = int(tok[i] - '0')
		i++
	}
	if i < len(tok) && tok[i] == '.' {
		dotted = true
		i++
	}
	if i != len(tok) {
		return Note{}, fmt.Errorf("%w: note %q", ErrSyntax, tok)
	}

	ms := wholeMs / dur
	if dotted {
		ms += ms / 2
	}

	var freq uint16
	if !rest {
		// A4 = 440Hz is semitone 57 counting from C0.
		idx := oct*12 + semi
		freq = uint16(math.Round(440 * math.Pow(2, float64(idx-57)/12)))
	}
	return Note{FreqHz: freq, Ms: uint16(ms)}, nil
}
