package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
)

// sampleRows seed a freshly scaffolded inventory so operators can see the
// expected shape. They are valid rows and parse cleanly.
var sampleRows = [][]string{
	{"srv-001", "db-orders.internal.example.com", "5432", "postgres", "standard-4", "1"},
	{"srv-002", "db-billing.internal.example.com", "5432", "postgres", "standard-8", "2"},
}

// WriteTemplate creates a new inventory file at path with the standard
// header and sample rows. It refuses to overwrite an existing file.
func WriteTemplate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("inventory %s already exists", path)
		}
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, row := range sampleRows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
