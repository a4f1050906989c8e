package sampler

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// WalkerFile holds the latest walker positions, one column per walker.
	WalkerFile = "walkers.dat"
	// ChainFile accumulates the sampled chain, one row per walker state.
	ChainFile = "chain.dat"
)

// Checkpointer persists sampler state in a run's output directory.
type Checkpointer struct {
	Dir string
}

// Save writes the walker positions atomically: a header line
// "dim nwalkers loop", then one row per parameter with one column per
// walker. The write goes through a temp file and rename so a crash mid-save
// cannot corrupt the previous checkpoint.
func (c *Checkpointer) Save(loop int, walkers []Walker) error {
	if len(walkers) == 0 {
		return fmt.Errorf("no walkers to checkpoint")
	}
	dim := len(walkers[0].Pos)

	var b strings.Builder
	fmt.Fprintf(&b, "%d %d %d\n", dim, len(walkers), loop)
	for p := 0; p < dim; p++ {
		for i, w := range walkers {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(w.Pos[p], 'g', 17, 64))
		}
		b.WriteByte('\n')
	}

	path := filepath.Join(c.Dir, WalkerFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing checkpoint: %w", err)
	}
	return nil
}

// Load reads the latest checkpoint and returns the walker positions and the
// index of the next loop to run.
func (c *Checkpointer) Load() ([][]float64, int, error) {
	return LoadPositions(filepath.Join(c.Dir, WalkerFile))
}

// LoadPositions reads a walker-position file in the checkpoint format and
// returns the positions and the index of the next loop to run. It also
// serves standalone start-position files.
func LoadPositions(path string) ([][]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return nil, 0, fmt.Errorf("checkpoint %s is empty", path)
	}
	header := strings.Fields(sc.Text())
	if len(header) != 3 {
		return nil, 0, fmt.Errorf("bad checkpoint header: %q", sc.Text())
	}
	dim, err1 := strconv.Atoi(header[0])
	nwalkers, err2 := strconv.Atoi(header[1])
	loop, err3 := strconv.Atoi(header[2])
	if err1 != nil || err2 != nil || err3 != nil || dim <= 0 || nwalkers <= 0 || loop < 0 {
		return nil, 0, fmt.Errorf("bad checkpoint header: %q", sc.Text())
	}

	positions := make([][]float64, nwalkers)
	for i := range positions {
		positions[i] = make([]float64, dim)
	}
	for p := 0; p < dim; p++ {
		if !sc.Scan() {
			return nil, 0, fmt.Errorf("checkpoint truncated at parameter row %d", p)
		}
		cols := strings.Fields(sc.Text())
		if len(cols) != nwalkers {
			return nil, 0, fmt.Errorf("parameter row %d has %d columns, expected %d", p, len(cols), nwalkers)
		}
		for i, col := range cols {
			v, err := strconv.ParseFloat(col, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("parameter row %d column %d: %w", p, i, err)
			}
			positions[i][p] = v
		}
	}

	return positions, loop + 1, nil
}

// HasCheckpoint reports whether the directory holds a saved checkpoint.
func (c *Checkpointer) HasCheckpoint() bool {
	_, err := os.Stat(filepath.Join(c.Dir, WalkerFile))
	return err == nil
}

// AppendChain appends the loop's iteration history to the chain file, one
// row per walker state: the position followed by its log-probability.
func (c *Checkpointer) AppendChain(history []Walker) error {
	file, err := os.OpenFile(filepath.Join(c.Dir, ChainFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening chain file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, walker := range history {
		for p, v := range walker.Pos {
			if p > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.FormatFloat(v, 'g', 17, 64))
		}
		fmt.Fprintf(w, " %s\n", strconv.FormatFloat(walker.LogProb, 'g', 17, 64))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing chain file: %w", err)
	}
	return nil
}
