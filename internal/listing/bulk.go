package listing

import (
	"context"
	"fmt"

	"careerboard/internal/notify"
	"careerboard/internal/store"
)

// BulkRow is one parsed input row. Line is the 1-based data row number reported in errors.
type BulkRow struct {
	Line   int
	Fields store.Item
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type BulkResult struct {
	Uploaded int        `json:"uploaded"`
	Errors   []RowError `json:"errors"`
}

// Failed reports whether at least one row was not stored.
func (r BulkResult) Failed() bool {
	return len(r.Errors) > 0
}

type pendingRow struct {
	line int
	item store.Item
}

// BulkUpload validates each row, then writes valid rows in batches of store.MaxBatchSize.
// A row repeating the identifier of an earlier row in the same upload is rejected.
// Batches run in order; a failed batch marks its rows as errors and later batches still run.
// Rows already written are never rolled back.
func (s *Service) BulkUpload(ctx context.Context, rows []BulkRow) BulkResult {
	res := BulkResult{Errors: make([]RowError, 0)}

	idField := s.res.IDField()
	firstLine := make(map[string]int, len(rows))
	valid := make([]pendingRow, 0, len(rows))
	for _, r := range rows {
		it, err := s.prepareNew(r.Fields)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: r.Line, Error: err.Error()})
			continue
		}
		id := it.String(idField)
		if line, ok := firstLine[id]; ok {
			res.Errors = append(res.Errors, RowError{Row: r.Line, Error: fmt.Sprintf("duplicate %s of row %d", idField, line)})
			continue
		}
		firstLine[id] = r.Line
		valid = append(valid, pendingRow{line: r.Line, item: it})
	}

	for start := 0; start < len(valid); start += store.MaxBatchSize {
		if ctx.Err() != nil {
			for _, p := range valid[start:] {
				res.Errors = append(res.Errors, RowError{Row: p.line, Error: ctx.Err().Error()})
			}
			break
		}

		end := start + store.MaxBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		chunk := valid[start:end]

		items := make([]store.Item, len(chunk))
		for i, p := range chunk {
			items[i] = p.item
		}
		if err := s.store.BatchPut(ctx, s.res.Table, items); err != nil {
			s.logger.Printf("[Listing] batch write failed resource=%s rows=%d-%d err=%v",
				s.res.Name, chunk[0].line, chunk[len(chunk)-1].line, err)
			for _, p := range chunk {
				res.Errors = append(res.Errors, RowError{Row: p.line, Error: "failed to store row"})
			}
			continue
		}
		res.Uploaded += len(chunk)
	}

	if res.Uploaded > 0 {
		s.sink.Publish(ctx, notify.Event{
			Type:     notify.EventListingBulk,
			Resource: s.res.Name,
			Count:    res.Uploaded,
			At:       s.now().UTC(),
		})
	}
	return res
}
