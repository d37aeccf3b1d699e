package importer

import (
	"encoding/csv"
	"fmt"
	"strings"
)

const resultSuccess = "Success"

// ResultsCSV returns an annotated copy of the uploaded document: the
// original header gains a leading "Result" column and every data row is
// marked Success or "Error: <message>". Rows excluded from the merge are
// still listed, so the user can see exactly which lines failed and why.
func (p *Pipeline) ResultsCSV() (string, error) {
	if p.state != StateComplete {
		return "", fmt.Errorf("results not available in state %s", p.state)
	}
	if p.originalCSV == "" {
		return "", fmt.Errorf("no uploaded CSV to annotate")
	}

	reader := csv.NewReader(strings.NewReader(p.originalCSV))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reparse uploaded csv: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("uploaded csv is empty")
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(append([]string{"Result"}, records[0]...))
	for i, record := range records[1:] {
		result, ok := p.rowResults[i]
		if !ok {
			result = resultSuccess
		}
		w.Write(append([]string{result}, record...))
	}
	w.Flush()
	return sb.String(), nil
}
