package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const depotsJSON = `[
  {"name": "Esenyurt", "lat": 41.0343, "lon": 28.6801},
  {"name": "Haramidere", "lat": 41.0125, "lon": 28.6620}
]`

const ordersCSV = "latitude,longtitude,order_count,total_desi,total_hj_desi,total_used_desi,address_line_1,status\n" +
	"41.05,28.67,3,120.5,10,100,Street 1,success\n" +
	"41.06,28.68,1,40,,,\"Street 2, No 5\",\n" +
	"not-a-number,28.68,1,40,,,x,\n" +
	"41.07,28.69,1,-5,,,negative desi,\n" +
	"95.0,28.69,1,5,,,bad latitude,\n" +
	"41.08,28.70,2,60,0,0,zero used,\n"

func TestLoadDepots(t *testing.T) {
	path := writeFile(t, t.TempDir(), "depots.json", depotsJSON)

	depots, err := LoadDepots(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(depots) != 2 {
		t.Fatalf("expected 2 depots, got %d", len(depots))
	}

	d, ok := FindDepot(depots, "haramidere")
	if !ok || d.Lat != 41.0125 {
		t.Fatalf("FindDepot: got %+v ok=%v", d, ok)
	}
	if _, ok := FindDepot(depots, "Beylikduzu"); ok {
		t.Fatalf("unexpected depot match")
	}
}

func TestLoadDepotsMissingFile(t *testing.T) {
	_, err := LoadDepots(filepath.Join(t.TempDir(), "nope.json"))

	var nf *DepotFileNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *DepotFileNotFoundError, got %T (%v)", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist")
	}
}

func TestLoadDepotsRejectsInvalidDepot(t *testing.T) {
	path := writeFile(t, t.TempDir(), "depots.json", `[{"name": " ", "lat": 41, "lon": 28}]`)
	if _, err := LoadDepots(path); err == nil {
		t.Fatalf("expected validation error for unnamed depot")
	}
}

func TestLoadWarehouseOrdersSkipsBadRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.csv", ordersCSV)

	orders, err := LoadWarehouseOrders(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 valid orders, got %d: %+v", len(orders), orders)
	}

	first := orders[0]
	if first.Longitude != 28.67 || first.OrderCount != 3 || first.UsedDesi() != 100 {
		t.Fatalf("first order parsed wrong: %+v", first)
	}
	if first.Status != "success" || first.TotalHJDesi == nil || *first.TotalHJDesi != 10 {
		t.Fatalf("optional fields parsed wrong: %+v", first)
	}

	second := orders[1]
	if second.AddressLine1 != "Street 2, No 5" {
		t.Fatalf("quoted address: got %q", second.AddressLine1)
	}
	if second.TotalUsedDesi != nil || second.UsedDesi() != 0 {
		t.Fatalf("missing used desi must count as zero: %+v", second)
	}

	if orders[2].TotalDesi != 60 || orders[2].UsedDesi() != 0 {
		t.Fatalf("zero used desi must stay zero, got %g", orders[2].UsedDesi())
	}
}

func TestReadWarehouseOrdersAcceptsLongitudeAndBOM(t *testing.T) {
	body := "\ufeffLatitude,Longitude,Order_Count,Total_Desi\n41,28,1,5\n"
	orders, skipped, err := ReadWarehouseOrders(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || skipped != 0 {
		t.Fatalf("got %d orders, %d skipped", len(orders), skipped)
	}
}

func TestLoadWarehouseOrdersErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.csv")},
		{"empty file", writeFile(t, dir, "empty.csv", "")},
		{"missing longitude", writeFile(t, dir, "nolon.csv", "latitude,order_count,total_desi\n1,1,1\n")},
		{"missing desi", writeFile(t, dir, "nodesi.csv", "latitude,longtitude,order_count\n1,1,1\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWarehouseOrders(tt.path)
			var le *WarehouseOrdersLoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected *WarehouseOrdersLoadError, got %T (%v)", err, err)
			}
		})
	}
}

func TestFileBranchSource(t *testing.T) {
	dir := t.TempDir()
	depots := writeFile(t, dir, "depots.json", depotsJSON)
	orders := writeFile(t, dir, "esenyurt.csv", ordersCSV)

	src := NewFileBranchSource(depots, map[string]string{"Esenyurt": orders})
	ctx := context.Background()

	d, err := src.Depot(ctx, "ESENYURT")
	if err != nil || d.Name != "Esenyurt" {
		t.Fatalf("Depot: got %+v err=%v", d, err)
	}
	if _, err := src.Depot(ctx, "Nowhere"); err == nil {
		t.Fatalf("expected error for unknown depot")
	}

	got, err := src.Orders(ctx, "esenyurt")
	if err != nil || len(got) != 3 {
		t.Fatalf("Orders: got %d err=%v", len(got), err)
	}
	if _, err := src.Orders(ctx, "Haramidere"); err == nil {
		t.Fatalf("expected error for unconfigured branch")
	}
}
