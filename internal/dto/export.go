package dto

// Export formats supported by the complaint export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest selects the format and optional status filter for an export.
type ExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
	Status string `form:"status" validate:"omitempty,oneof=pending verified rejected assigned in_progress completed"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
