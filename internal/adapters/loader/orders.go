package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"warehouse-route-service/internal/domain"
)

// Column names of the orders export. The longitude column is spelled
// "longtitude" in production files; both spellings are accepted.
var (
	requiredColumns  = []string{"latitude", "order_count", "total_desi"}
	longitudeColumns = []string{"longtitude", "longitude"}
)

// LoadWarehouseOrders reads one branch's orders CSV.
// Rows with unparsable or out-of-range values are skipped and counted in the log.
func LoadWarehouseOrders(path string) ([]domain.WarehouseOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &WarehouseOrdersLoadError{Path: path, Err: err}
	}
	defer f.Close()

	orders, skipped, err := ReadWarehouseOrders(f)
	if err != nil {
		return nil, &WarehouseOrdersLoadError{Path: path, Err: err}
	}
	if skipped > 0 {
		log.Printf("orders loaded path=%s rows=%d skipped=%d", path, len(orders), skipped)
	}
	return orders, nil
}

// ReadWarehouseOrders parses orders from r and returns the number of skipped rows.
func ReadWarehouseOrders(r io.Reader) ([]domain.WarehouseOrder, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errors.New("empty file")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", c)
		}
	}
	lonCol := -1
	for _, c := range longitudeColumns {
		if i, ok := cols[c]; ok {
			lonCol = i
			break
		}
	}
	if lonCol < 0 {
		return nil, 0, errors.New(`missing column "longtitude"`)
	}

	var orders []domain.WarehouseOrder
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("read row: %w", err)
		}

		o, err := parseOrder(rec, cols, lonCol)
		if err != nil {
			skipped++
			continue
		}
		orders = append(orders, o)
	}

	return orders, skipped, nil
}

func parseOrder(rec []string, cols map[string]int, lonCol int) (domain.WarehouseOrder, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var o domain.WarehouseOrder
	var err error

	if o.Latitude, err = strconv.ParseFloat(field("latitude"), 64); err != nil {
		return o, fmt.Errorf("latitude: %w", err)
	}
	if lonCol >= len(rec) {
		return o, errors.New("longitude: missing")
	}
	if o.Longitude, err = strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64); err != nil {
		return o, fmt.Errorf("longitude: %w", err)
	}
	if o.OrderCount, err = strconv.Atoi(field("order_count")); err != nil {
		return o, fmt.Errorf("order_count: %w", err)
	}
	if o.TotalDesi, err = strconv.ParseFloat(field("total_desi"), 64); err != nil {
		return o, fmt.Errorf("total_desi: %w", err)
	}
	if o.TotalHJDesi, err = optionalFloat(field("total_hj_desi")); err != nil {
		return o, fmt.Errorf("total_hj_desi: %w", err)
	}
	if o.TotalUsedDesi, err = optionalFloat(field("total_used_desi")); err != nil {
		return o, fmt.Errorf("total_used_desi: %w", err)
	}
	o.AddressLine1 = field("address_line_1")
	o.Status = field("status")

	if err := validate.Struct(o); err != nil {
		return o, err
	}
	return o, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
