package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"trailer-sales-engine/internal/models"
)

// Inventory feed parser errors
var (
	ErrEmptyFeed      = errors.New("feed content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("feed contains no data rows")
	ErrHeaderNotFound = errors.New("no sheet contains a stock number header")
)

// RequiredColumns defines the columns that must be present in a feed.
var RequiredColumns = []string{
	"stock_number",
	"cost",
	"listed_price",
}

// ColumnAliases maps dealer-specific column names to standard names.
var ColumnAliases = map[string]string{
	// stock_number aliases
	"stock":        "stock_number",
	"stock #":      "stock_number",
	"stock no":     "stock_number",
	"stock_no":     "stock_number",
	"stocknumber":  "stock_number",
	"stock number": "stock_number",
	"unit":         "stock_number",
	"unit #":       "stock_number",
	"vin":          "stock_number",

	// description aliases
	"desc":             "description",
	"model":            "description",
	"unit_description": "description",
	"title":            "description",

	// cost aliases
	"dealer cost":    "cost",
	"dealer_cost":    "cost",
	"wholesale":      "cost",
	"wholesale cost": "cost",
	"invoice":        "cost",
	"invoice cost":   "cost",
	"unit cost":      "cost",

	// listed_price aliases
	"listed price": "listed_price",
	"list price":   "listed_price",
	"list_price":   "listed_price",
	"listprice":    "listed_price",
	"msrp":         "listed_price",
	"retail":       "listed_price",
	"retail price": "listed_price",
	"price":        "listed_price",
}

// InventoryParser parses dealer inventory feeds (CSV or XLSX).
type InventoryParser struct {
	columnMapping map[string]int
}

// NewInventoryParser creates a new inventory parser instance.
func NewInventoryParser() *InventoryParser {
	return &InventoryParser{
		columnMapping: make(map[string]int),
	}
}

// Parse dispatches on the file extension.
func (p *InventoryParser) Parse(fileName string, data []byte, batchID string) ([]*models.InventoryItemCreate, []error) {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".csv":
		return p.ParseCSV(string(data), batchID)
	case ".xlsx":
		return p.ParseXLSX(data, batchID)
	default:
		return nil, []error{fmt.Errorf("%w: %q", models.ErrUnsupportedFeedFormat, path.Ext(fileName))}
	}
}

// ParseCSV parses CSV feed content.
func (p *InventoryParser) ParseCSV(content string, batchID string) ([]*models.InventoryItemCreate, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyFeed}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}
	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var items []*models.InventoryItemCreate
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		item, err := p.parseRow(record, batchID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		items = append(items, item)
	}

	return finishParse(items, parseErrors)
}

// ParseXLSX parses the first sheet of a workbook that carries a stock number
// header. Title rows above the header are skipped.
func (p *InventoryParser) ParseXLSX(data []byte, batchID string) ([]*models.InventoryItemCreate, []error) {
	if len(data) == 0 {
		return nil, []error{ErrEmptyFeed}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, []error{fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			GetLogger().Warn("Failed to read sheet", String("sheet", sheet), Error(err))
			continue
		}

		headerIdx := findHeaderRow(rows)
		if headerIdx < 0 {
			continue
		}
		if err := p.buildColumnMapping(rows[headerIdx]); err != nil {
			return nil, []error{fmt.Errorf("sheet %s: %w", sheet, err)}
		}

		var items []*models.InventoryItemCreate
		var parseErrors []error
		for i, row := range rows[headerIdx+1:] {
			if isBlankRow(row) {
				continue
			}
			rowNum := headerIdx + i + 2 // 1-based, after header
			item, err := p.parseRow(row, batchID)
			if err != nil {
				parseErrors = append(parseErrors, fmt.Errorf("sheet %s row %d: %w", sheet, rowNum, err))
				continue
			}
			items = append(items, item)
		}

		return finishParse(items, parseErrors)
	}

	return nil, []error{ErrHeaderNotFound}
}

func finishParse(items []*models.InventoryItemCreate, parseErrors []error) ([]*models.InventoryItemCreate, []error) {
	if len(items) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}
	return items, parseErrors
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if canonicalColumn(cell) == "stock_number" {
				return i
			}
		}
	}
	return -1
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func canonicalColumn(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// buildColumnMapping creates a mapping of standard column names to their indices.
// The first occurrence of a column wins.
func (p *InventoryParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := canonicalColumn(col)
		if _, seen := p.columnMapping[normalized]; !seen {
			p.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single row. The cost cell is kept raw; pricing decides
// whether it is usable.
func (p *InventoryParser) parseRow(record []string, batchID string) (*models.InventoryItemCreate, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	listedStr := getValue("listed_price")
	listed, err := parseFloat(listedStr)
	if err != nil {
		return nil, fmt.Errorf("invalid listed_price %q: %w", listedStr, err)
	}

	item := &models.InventoryItemCreate{
		StockNumber: getValue("stock_number"),
		Description: getValue("description"),
		CostRaw:     getValue("cost"),
		ListedPrice: listed,
		BatchID:     batchID,
	}

	if err := models.ValidateInventoryItem(item); err != nil {
		return nil, err
	}

	return item, nil
}

// parseFloat parses a currency string to float64.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
