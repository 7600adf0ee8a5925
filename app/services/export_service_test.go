package services_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// memDisk captures Put calls so exports can be asserted without touching the
// filesystem.
type memDisk struct {
	files map[string][]byte
}

func newMemDisk() *memDisk { return &memDisk{files: map[string][]byte{}} }

func (d *memDisk) Put(path string, content []byte) error {
	d.files[path] = content
	return nil
}
func (d *memDisk) Get(path string) ([]byte, error)           { return d.files[path], nil }
func (d *memDisk) Exists(path string) bool                   { _, ok := d.files[path]; return ok }
func (d *memDisk) Size(path string) (int64, error)           { return int64(len(d.files[path])), nil }
func (d *memDisk) LastModified(string) (time.Time, error)    { return time.Time{}, nil }
func (d *memDisk) URL(path string) string                    { return "mem://" + path }
func (d *memDisk) Delete(path string) error                  { delete(d.files, path); return nil }
func (d *memDisk) Files(directory string) ([]string, error)  { return nil, nil }

var _ storage.Disk = (*memDisk)(nil)

func newExportHarness(t *testing.T) (*services.ExportService, *services.OrderService, *services.CartService) {
	t.Helper()
	mem := store.NewMemory()
	carts := services.NewCartService(mem)
	orders := services.NewOrderService(mem, carts, services.NewNotificationService(mem))
	return services.NewExportService(orders), orders, carts
}

func TestWriteCSVHeaderOnlyWhenEmpty(t *testing.T) {
	export, _, _ := newExportHarness(t)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"order_id", "order_date", "customer", "phone", "email", "status",
		"total", "items", "delivery_date", "delivery_time", "delivery_address", "notes",
	}, rows[0])
}

func TestWriteCSVRows(t *testing.T) {
	export, orders, carts := newExportHarness(t)

	_, err := carts.AddToCart(rice())
	require.NoError(t, err)
	_, err = carts.AddToCart(rice())
	require.NoError(t, err)
	_, err = carts.AddToCart(oil())
	require.NoError(t, err)

	info := checkoutInfo()
	info.Notes = "gate 2, morning only"
	order, err := orders.Checkout(customer(), info)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, order.ID, row[0])
	assert.Equal(t, "Ravi Traders", row[2])
	assert.Equal(t, "9876543210", row[3])
	assert.Equal(t, "ravi@mandi.test", row[4])
	assert.Equal(t, "processing", row[5])
	assert.Equal(t, "430", row[6])
	assert.Equal(t, "Basmati Rice 25kg x2; Sunflower Oil 15L x1", row[7])
	assert.Equal(t, "2026-09-05", row[8])
	assert.Equal(t, "06:00", row[9])
	assert.Equal(t, "Shop 14, Azadpur Mandi", row[10])
	assert.Equal(t, "gate 2, morning only", row[11])

	_, err = time.Parse(time.RFC3339, row[1])
	assert.NoError(t, err, "order_date is RFC3339")
}

func TestExportToDisk(t *testing.T) {
	export, orders, carts := newExportHarness(t)
	placeOrder(t, orders, carts, customer())

	disk := newMemDisk()
	path, err := export.ExportToDisk(disk, "exports/book.csv")
	require.NoError(t, err)
	assert.Equal(t, "exports/book.csv", path)

	content, err := disk.Get(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "order_id,"))
}

func TestExportToDiskDefaultPath(t *testing.T) {
	export, _, _ := newExportHarness(t)

	disk := newMemDisk()
	path, err := export.ExportToDisk(disk, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "exports/orders-"))
	assert.True(t, strings.HasSuffix(path, ".csv"))
	assert.True(t, disk.Exists(path))
}
