package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/media"
)

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// csvHeaderAliases maps alternative column names onto payload keys.
var csvHeaderAliases = map[string]string{
	"business_name": dto.FieldName,
	"company":       dto.FieldName,
	"phone":         dto.FieldMobileNumber,
	"email":         dto.FieldEmailID,
	"min_price":     dto.FieldMinPrice,
	"max_price":     dto.FieldMaxPrice,
	"reviews":       dto.FieldReviewCount,
	"type_business": dto.FieldCategory,
}

// ImportCSV ingests businesses from a CSV reader with a header row. Every row
// is validated like an operator create before anything is written, then all
// rows are inserted in one transaction.
func (s *BusinessesService) ImportCSV(ctx context.Context, r io.Reader) (dto.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportResult{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportResult{}, CSVValidationError{Message: fmt.Sprintf("read csv header: %v", err)}
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return dto.ImportResult{}, valErr
	}

	var (
		records []entity.Business
		images  = map[int]media.Image{}
		rowNum  = 1
		total   int
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportResult{}, CSVValidationError{Message: fmt.Sprintf("read csv row %d: %v", rowNum+1, err)}
		}

		rowNum++
		total++

		values := make(map[string]string, len(indexMap))
		for key, idx := range indexMap {
			if idx < len(row) {
				values[key] = row[idx]
			}
		}
		if strings.TrimSpace(values[dto.FieldName]) == "" {
			continue
		}

		business, image, err := s.prepareCreate(ctx, dto.BusinessPayloadFromStrings(values), entity.StatusActive)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return dto.ImportResult{}, CSVValidationError{Message: fmt.Sprintf("row %d: %s", rowNum, firstFieldError(vErr))}
			}
			return dto.ImportResult{}, err
		}
		if image != nil {
			images[len(records)] = *image
		}
		records = append(records, *business)
	}

	for idx, image := range images {
		hosted, err := s.upload(ctx, image)
		if err != nil {
			return dto.ImportResult{}, err
		}
		records[idx].Thumbnail = &hosted
	}

	inserted, err := s.repo.BulkInsert(ctx, records)
	if err != nil {
		return dto.ImportResult{}, err
	}
	for _, record := range records {
		s.metrics.RecordBusinessCreated(record.Status)
	}

	return dto.ImportResult{Inserted: inserted, Total: total}, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	known := make(map[string]string, len(dto.BusinessFields))
	for _, field := range dto.BusinessFields {
		known[strings.ToLower(field)] = field
	}

	index := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if field, ok := known[name]; ok {
			index[field] = i
			continue
		}
		if field, ok := csvHeaderAliases[name]; ok {
			if _, taken := index[field]; !taken {
				index[field] = i
			}
		}
	}

	if _, ok := index[dto.FieldName]; !ok {
		return nil, CSVValidationError{Message: "missing required columns: name"}
	}
	return index, nil
}

func firstFieldError(err *ValidationError) string {
	keys := make([]string, 0, len(err.Fields))
	for k := range err.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return err.Message
	}
	return fmt.Sprintf("invalid %s value: %s", keys[0], err.Fields[keys[0]])
}
