package visdata

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Load reads a visibility data file. Each non-comment line is one sample:
//
//	wavelength u v re im weight
//
// with wavelength in micron and u, v in kilolambda. Samples sharing a
// wavelength form one channel; channels appear in file order. Lines starting
// with '#' and blank lines are skipped.
func Load(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to open visibility file: %w", err)
	}
	defer file.Close()

	ds := Dataset{}
	var cur *Channel

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 6 {
			return Dataset{}, fmt.Errorf("line %d: expected 6 fields, got %d", lineNum, len(fields))
		}

		vals := make([]float64, 6)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("line %d: field %d: %w", lineNum, i+1, err)
			}
			vals[i] = v
		}

		wav := vals[0]
		if cur == nil || cur.Wavelength != wav {
			ds.Channels = append(ds.Channels, Channel{Wavelength: wav})
			cur = &ds.Channels[len(ds.Channels)-1]
		}
		cur.U = append(cur.U, vals[1])
		cur.V = append(cur.V, vals[2])
		cur.Re = append(cur.Re, vals[3])
		cur.Im = append(cur.Im, vals[4])
		cur.Weight = append(cur.Weight, vals[5])
	}
	if err := scanner.Err(); err != nil {
		return Dataset{}, fmt.Errorf("error scanning visibility file: %w", err)
	}
	if len(ds.Channels) == 0 {
		return Dataset{}, fmt.Errorf("visibility file %s contains no samples", path)
	}

	return ds, nil
}
