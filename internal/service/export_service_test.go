package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

func TestExportServiceCSV(t *testing.T) {
	f := newLifecycleFixture(t)
	f.submit(t)
	verified := f.verifiedComplaint(t)
	svc := NewExportService(memComplaints{db: f.db}, nil, nil, nil, nil)

	file, err := svc.Complaints(context.Background(), dto.ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, file.Filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ID", records[0][0])

	file, err = svc.Complaints(context.Background(), dto.ExportRequest{Status: "verified"})
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, verified.ID, records[1][0])
	assert.Equal(t, "budi@example.com", records[1][9])
}

func TestExportServicePDF(t *testing.T) {
	f := newLifecycleFixture(t)
	f.submit(t)
	svc := NewExportService(memComplaints{db: f.db}, nil, nil, nil, nil)

	file, err := svc.Complaints(context.Background(), dto.ExportRequest{Format: dto.ExportFormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewExportService(memComplaints{db: f.db}, nil, nil, nil, nil)

	_, err := svc.Complaints(context.Background(), dto.ExportRequest{Format: "xlsx"})
	requireAppError(t, err, appErrors.ErrValidation)
}
