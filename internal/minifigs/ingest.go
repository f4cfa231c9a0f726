package minifigs

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned when a catalog file has no usable header.
var ErrUnknownFormat = errors.New("unrecognized catalog file")

// Header aliases, lower case. The first set is the BrickLink catalog
// download, the second the index itself.
var (
	codeColumns = []string{"number", "code", "item no", "no"}
	nameColumns = []string{"name", "item name"}
	yearColumns = []string{"year released", "year"}
)

// ParseCatalogFile reads a tab or comma separated minifigure list.
func ParseCatalogFile(r io.Reader) ([]Minifig, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if line, _, _ := strings.Cut(string(first), "\n"); strings.Contains(line, "\t") {
		reader.Comma = '\t'
	}

	head, err := reader.Read()
	if err == io.EOF {
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	cols := columnIndex(head)
	code, okCode := lookup(cols, codeColumns)
	name, okName := lookup(cols, nameColumns)
	if !okCode || !okName {
		return nil, ErrUnknownFormat
	}
	year, okYear := lookup(cols, yearColumns)

	var figs []Minifig
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		if code >= len(rec) || name >= len(rec) {
			continue
		}
		fig := Minifig{
			Code: strings.TrimSpace(rec[code]),
			Name: restoreBrackets(strings.TrimSpace(rec[name])),
		}
		if fig.Code == "" {
			continue
		}
		if okYear && year < len(rec) {
			fig.Year = strings.TrimSpace(rec[year])
			if fig.Year == "?" {
				fig.Year = ""
			}
		}
		figs = append(figs, fig)
	}
	return figs, nil
}

func lookup(cols map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}
