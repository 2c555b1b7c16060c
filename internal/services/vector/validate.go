package vector

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"cryptolab/internal/modes"
)

type Record struct {
	Count     int
	Key       []byte
	IV        []byte
	PT        []byte
	CT        []byte
	Direction string // ENCRYPT or DECRYPT
}

type Mismatch struct {
	Count    int    `json:"count"`
	Mode     string `json:"mode"`
	Expected string `json:"expected"`
	Got      string `json:"got"`
}

type ValidationResult struct {
	Total    int        `json:"total"`
	Passed   int        `json:"passed"`
	Failed   int        `json:"failed"`
	Failures []Mismatch `json:"failures,omitempty"`
}

// ParseVectorFile reads [ENCRYPT]/[DECRYPT] sections of COUNT/KEY/IV/
// PLAINTEXT/CIPHERTEXT assignments. Blank lines and # comments are skipped.
func ParseVectorFile(r io.Reader) ([]Record, error) {
	var recs []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	section := ""
	var cur Record
	started := false
	lineNo := 0

	flush := func() {
		if started {
			cur.Direction = section
			recs = append(recs, cur)
		}
		cur = Record{}
		started = false
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			section = strings.ToUpper(strings.Trim(line, "[]"))
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.ToUpper(strings.TrimSpace(parts[0]))
		v := strings.TrimSpace(parts[1])

		var err error
		switch k {
		case "COUNT":
			flush()
			started = true
			_, err = fmt.Sscanf(v, "%d", &cur.Count)
		case "KEY":
			cur.Key, err = hex.DecodeString(v)
		case "IV":
			cur.IV, err = hex.DecodeString(v)
		case "PLAINTEXT":
			cur.PT, err = hex.DecodeString(v)
		case "CIPHERTEXT":
			cur.CT, err = hex.DecodeString(v)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: bad %s: %w", lineNo, k, err)
		}
		started = true
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Validate recomputes every record with the named cipher and mode and
// counts mismatches. Structural problems (bad key or IV length, unaligned
// CBC data, unknown section) abort with an error naming the record.
func Validate(algorithm, mode, test string, recs []Record) (ValidationResult, error) {
	res := ValidationResult{Total: len(recs)}
	ci, err := modes.Lookup(algorithm)
	if err != nil {
		return res, err
	}
	m, err := modes.ParseMode(mode)
	if err != nil {
		return res, err
	}
	tmode, err := ParseTestMode(test)
	if err != nil {
		return res, err
	}

	for _, r := range recs {
		var in, want []byte
		encrypt := false
		switch strings.ToUpper(r.Direction) {
		case "ENCRYPT":
			in, want, encrypt = r.PT, r.CT, true
		case "DECRYPT":
			in, want = r.CT, r.PT
		default:
			return res, fmt.Errorf("unknown section %q at COUNT=%d", r.Direction, r.Count)
		}

		var got []byte
		if tmode == MCT {
			got, err = monteCarlo(ci, m, r.Key, r.IV, in, encrypt)
		} else {
			enc, dec, rerr := runner(ci, m, r.Key, r.IV)
			if rerr != nil {
				return res, fmt.Errorf("COUNT=%d: %w", r.Count, rerr)
			}
			if encrypt {
				got, err = enc(in)
			} else {
				got, err = dec(in)
			}
		}
		if err != nil {
			return res, fmt.Errorf("COUNT=%d: %w", r.Count, err)
		}

		if bytes.Equal(got, want) {
			res.Passed++
			continue
		}
		res.Failed++
		res.Failures = append(res.Failures, Mismatch{
			Count:    r.Count,
			Mode:     strings.ToUpper(r.Direction),
			Expected: hex.EncodeToString(want),
			Got:      hex.EncodeToString(got),
		})
	}
	return res, nil
}
