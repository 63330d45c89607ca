// Package sheet reads and scaffolds the server inventory spreadsheet.
//
// The inventory is a CSV file with one row per database server scheduled
// for migration. Field values may reference run parameters using ${NAME}
// placeholders, which are substituted before validation.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/avetrov-io/cloudmig/internal/params"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Header is the required first row of an inventory file.
var Header = []string{"server_id", "hostname", "port", "engine", "target_tier", "wave"}

// Column indexes into Header.
const (
	colServerID = iota
	colHostname
	colPort
	colEngine
	colTargetTier
	colWave
)

// Defaults applied to optional columns left empty.
const (
	defaultPort   = 5432
	defaultEngine = "postgres"
	defaultWave   = 1
)

// Parse reads an inventory from r, expands parameters, and validates
// every row. It returns all row errors joined so operators can fix the
// whole sheet in one pass.
func Parse(r io.Reader, parameters map[string]string) ([]cloudmig.ServerRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed inventory: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("inventory is empty")
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var (
		records []cloudmig.ServerRecord
		errs    []error
		seen    = make(map[string]int)
	)

	for i, row := range rows[1:] {
		line := i + 2 // 1-based, after the header

		if isBlank(row) {
			continue
		}

		record, err := parseRow(row, line, parameters)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if prev, dup := seen[record.ServerID]; dup {
			errs = append(errs, fmt.Errorf("line %d: duplicate server_id %q (first seen on line %d)", line, record.ServerID, prev))
			continue
		}
		seen[record.ServerID] = line

		records = append(records, record)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("inventory contains no server rows")
	}
	return records, nil
}

// LoadFile reads and parses the inventory file at path.
// A missing file maps to cloudmig.ErrInventoryNotFound.
func LoadFile(path string, parameters map[string]string) ([]cloudmig.ServerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, cloudmig.ErrInventoryNotFound)
		}
		return nil, err
	}
	defer f.Close()

	records, err := Parse(f, parameters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func checkHeader(row []string) error {
	if len(row) != len(Header) {
		return fmt.Errorf("line 1: expected header %q, got %d columns", strings.Join(Header, ","), len(row))
	}
	for i, want := range Header {
		if strings.TrimSpace(strings.ToLower(row[i])) != want {
			return fmt.Errorf("line 1: expected column %d to be %q, got %q", i+1, want, row[i])
		}
	}
	return nil
}

func parseRow(row []string, line int, parameters map[string]string) (cloudmig.ServerRecord, error) {
	if len(row) != len(Header) {
		return cloudmig.ServerRecord{}, fmt.Errorf("line %d: expected %d columns, got %d", line, len(Header), len(row))
	}

	fields := make([]string, len(row))
	for i, raw := range row {
		expanded, err := params.Expand(strings.TrimSpace(raw), parameters)
		if err != nil {
			return cloudmig.ServerRecord{}, fmt.Errorf("line %d: %w", line, err)
		}
		fields[i] = expanded
	}

	record := cloudmig.ServerRecord{
		ServerID:   fields[colServerID],
		Hostname:   fields[colHostname],
		Engine:     fields[colEngine],
		TargetTier: fields[colTargetTier],
		Line:       line,
	}

	if record.ServerID == "" {
		return cloudmig.ServerRecord{}, fmt.Errorf("line %d: server_id is required", line)
	}
	if record.Hostname == "" {
		return cloudmig.ServerRecord{}, fmt.Errorf("line %d: hostname is required", line)
	}
	if record.Engine == "" {
		record.Engine = defaultEngine
	}

	record.Port = defaultPort
	if fields[colPort] != "" {
		port, err := strconv.Atoi(fields[colPort])
		if err != nil || port < 1 || port > 65535 {
			return cloudmig.ServerRecord{}, fmt.Errorf("line %d: invalid port %q", line, fields[colPort])
		}
		record.Port = port
	}

	record.Wave = defaultWave
	if fields[colWave] != "" {
		wave, err := strconv.Atoi(fields[colWave])
		if err != nil || wave < 1 {
			return cloudmig.ServerRecord{}, fmt.Errorf("line %d: invalid wave %q (must be a positive integer)", line, fields[colWave])
		}
		record.Wave = wave
	}

	return record, nil
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Waves returns the distinct wave numbers present in records, in
// ascending order.
func Waves(records []cloudmig.ServerRecord) []int {
	present := map[int]bool{}
	for _, r := range records {
		present[r.Wave] = true
	}
	waves := make([]int, 0, len(present))
	for w := range present {
		waves = append(waves, w)
	}
	sort.Ints(waves)
	return waves
}

// ByWave returns the records scheduled in the given wave, preserving
// sheet order.
func ByWave(records []cloudmig.ServerRecord, wave int) []cloudmig.ServerRecord {
	var out []cloudmig.ServerRecord
	for _, r := range records {
		if r.Wave == wave {
			out = append(out, r)
		}
	}
	return out
}
