package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders complaint listings for administrators.
type ExportService struct {
	complaints complaintLister
	csv        csvRenderer
	pdf        pdfRenderer
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(complaints complaintLister, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{complaints: complaints, csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// Complaints renders every complaint, optionally filtered by status, as CSV or PDF.
func (s *ExportService) Complaints(ctx context.Context, req dto.ExportRequest) (*dto.ExportFile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid export parameters")
	}
	format := req.Format
	if format == "" {
		format = dto.ExportFormatCSV
	}

	rows, _, err := s.complaints.List(ctx, models.ComplaintFilter{Status: models.ComplaintStatus(req.Status)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	dataset := complaintDataset(rows)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Road Complaints")
		contentType = "application/pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("complaints exported", zap.String("format", format), zap.Int("rows", len(rows)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("complaints_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func complaintDataset(rows []models.ComplaintWithOwner) export.Dataset {
	data := export.Dataset{
		Headers: []string{"ID", "Title", "Type", "Priority", "Status", "Location", "Latitude", "Longitude", "Owner", "Email", "Created At"},
	}
	for _, c := range rows {
		data.Append(
			c.ID,
			c.Title,
			string(c.Type),
			string(c.Priority),
			string(c.Status),
			c.Location,
			formatCoordinate(c.Latitude),
			formatCoordinate(c.Longitude),
			c.OwnerUsername,
			c.OwnerEmail,
			c.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return data
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}
