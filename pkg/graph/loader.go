package graph

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadNodes parses a node table with the header "id,x,y,z". Ids must be dense
// and 0-based in row order. Positions are multiplied by scale.
func ReadNodes(r io.Reader, scale float64) ([]Node, error) {
	rows, err := readTable(r, []string{"id", "x", "y", "z"})
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // 1-based, after the header
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: id %q: %v", ErrMalformedRow, line, row[0], err)
		}
		if id != i {
			return nil, fmt.Errorf("%w: line %d: got id %d, want %d", ErrNodeIndex, line, id, i)
		}

		var xyz [3]float64
		for j := range xyz {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: coordinate %q: %v", ErrMalformedRow, line, row[j+1], err)
			}
			xyz[j] = v
		}
		nodes = append(nodes, Node{Pos: r3.Scale(scale, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})})
	}
	return nodes, nil
}

// ReadEdges parses an edge table with the header "src,dest". Both endpoints
// must be valid indices into a table of nodeCount nodes.
func ReadEdges(r io.Reader, nodeCount int) ([]EdgeKey, error) {
	rows, err := readTable(r, []string{"src", "dest"})
	if err != nil {
		return nil, err
	}

	pairs := make([]EdgeKey, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		var ends [2]int
		for j := range ends {
			v, err := strconv.Atoi(strings.TrimSpace(row[j]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: endpoint %q: %v", ErrMalformedRow, line, row[j], err)
			}
			if v < 0 || v >= nodeCount {
				return nil, fmt.Errorf("%w: line %d: endpoint %d with %d nodes", ErrNodeOutOfRange, line, v, nodeCount)
			}
			ends[j] = v
		}
		pairs = append(pairs, EdgeKey{Src: ends[0], Dest: ends[1]})
	}
	return pairs, nil
}

// Load reads both tables and builds a store.
func Load(nodesR, edgesR io.Reader, scale float64) (*Store, error) {
	nodes, err := ReadNodes(nodesR, scale)
	if err != nil {
		return nil, fmt.Errorf("node table: %w", err)
	}
	pairs, err := ReadEdges(edgesR, len(nodes))
	if err != nil {
		return nil, fmt.Errorf("edge table: %w", err)
	}
	return Build(nodes, pairs)
}

// LoadFiles is Load over two files on disk.
func LoadFiles(nodesPath, edgesPath string, scale float64) (*Store, error) {
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open node table: %w", err)
	}
	defer nf.Close()

	ef, err := os.Open(edgesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge table: %w", err)
	}
	defer ef.Close()

	return Load(nf, ef, scale)
}

// readTable reads a CSV table, checks its header against want and returns the
// data rows.
func readTable(r io.Reader, want []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(want)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedRow)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), want[i]) {
			return nil, fmt.Errorf("%w: header column %d is %q, want %q", ErrMalformedRow, i+1, h, want[i])
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return rows, nil
}
