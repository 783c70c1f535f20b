package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/export"
)

// ExportFormat names a supported export rendering.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

var repairRequestExportHeaders = []string{
	"Request No", "Title", "Building", "Room", "Status", "Cancelled",
	"Quoted Amount", "Currency", "Submitted At", "Decided At",
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportRepairRequestLister interface {
	List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, int, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Enabled bool
	MaxRows int
}

// ExportResult carries a rendered export ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the admin repair request listing as CSV or PDF.
type ExportService struct {
	requests exportRepairRequestLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(requests exportRepairRequestLister, csv csvRenderer, pdf pdfRenderer, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	return &ExportService{
		requests: requests,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RenderRepairRequests builds the dataset for the given filter and renders it
// in the requested format.
func (s *ExportService) RenderRepairRequests(ctx context.Context, query dto.ListRepairRequestsQuery, format string) (*ExportResult, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	parsed, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}

	filter, err := buildRepairRequestFilter(query)
	if err != nil {
		return nil, err
	}
	filter.SkipCount = 0
	filter.MaxResultCount = s.cfg.MaxRows

	items, _, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load repair requests for export")
	}

	dataset := buildRepairRequestDataset(items)
	stamp := s.now().Format("20060102-150405")

	switch parsed {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("repair-requests-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Repair Requests")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("repair-requests-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
}

func parseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportFormatCSV, "":
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

func buildRepairRequestDataset(items []models.RepairRequest) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for i := range items {
		req := &items[i]
		row := map[string]string{
			"Request No":   req.RequestNo,
			"Title":        req.Title,
			"Building":     req.Building,
			"Room":         req.Room,
			"Status":       string(req.ApprovalStatus),
			"Cancelled":    strconv.FormatBool(req.IsCancelled),
			"Currency":     req.Currency,
			"Submitted At": req.SubmittedAt.Format(time.RFC3339),
		}
		if req.QuotedAmount != nil {
			row["Quoted Amount"] = strconv.FormatFloat(*req.QuotedAmount, 'f', 2, 64)
		}
		if req.DecidedAt != nil {
			row["Decided At"] = req.DecidedAt.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: repairRequestExportHeaders, Rows: rows}
}
