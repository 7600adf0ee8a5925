package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// ExportService renders the order book as CSV for the back office, either
// straight into an HTTP response or onto an archive disk (local directory or
// S3 bucket).
type ExportService struct {
	orders *OrderService
}

func NewExportService(orders *OrderService) *ExportService {
	return &ExportService{orders: orders}
}

var exportHeader = []string{
	"order_id", "order_date", "customer", "phone", "email", "status",
	"total", "items", "delivery_date", "delivery_time", "delivery_address", "notes",
}

// WriteCSV streams every order as one CSV row.
func (s *ExportService) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, o := range s.orders.Orders() {
		if err := cw.Write(exportRow(o)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportToDisk writes the CSV to the given archive disk and returns the path.
// An empty path defaults to a timestamped file under exports/.
func (s *ExportService) ExportToDisk(disk storage.Disk, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("exports/orders-%s.csv", time.Now().UTC().Format("20060102-150405"))
	}

	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		return "", fmt.Errorf("export: build csv: %w", err)
	}
	if err := disk.Put(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("export: store csv: %w", err)
	}
	return path, nil
}

func exportRow(o models.Order) []string {
	lines := make([]string, len(o.Items))
	for i, it := range o.Items {
		lines[i] = fmt.Sprintf("%s x%d", it.Name, it.Quantity)
	}

	return []string{
		o.ID,
		o.OrderDate.Format(time.RFC3339),
		o.CustomerName,
		o.CustomerPhone,
		o.CustomerEmail,
		string(o.Status),
		o.Total.String(),
		strings.Join(lines, "; "),
		o.DeliveryDate,
		o.DeliveryTime,
		o.DeliveryAddress,
		o.Notes,
	}
}

// ─── Background job ──────────────────────────────────────────────────────────

// ExportOrdersJob is the queued form of an order export, dispatched from the
// admin API and run by the queue workers.
type ExportOrdersJob struct {
	Disk string `json:"disk"`
	Path string `json:"path"`
}

func (j *ExportOrdersJob) Handle() error {
	st := store.Default()
	orders := NewOrderService(st, NewCartService(st), NewNotificationService(st))

	path, err := NewExportService(orders).ExportToDisk(storage.Use(j.Disk), j.Path)
	if err != nil {
		return err
	}
	logger.Info("export: orders archived", "disk", j.Disk, "path", path)
	return nil
}
